package lazydb

// Option configures the Settings Block of a freshly bootstrapped database
// file. Options are ignored when opening an existing file, whose stored
// settings always win.
type Option func(*Settings)

// WithContentIntSize sets the width in bytes of the content-length field.
func WithContentIntSize(width int) Option {
	return func(s *Settings) {
		s.ContentIntSize = width
	}
}

// WithIntListSize sets the width in bytes of one integer-list element.
func WithIntListSize(width int) Option {
	return func(s *Settings) {
		s.IntListSize = width
	}
}
