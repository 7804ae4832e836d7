//go:build !darwin

package bundle

func setCustomIconFlag(_ string) error {
	return ErrUnsupportedPlatform
}

func customIconFlag(_ string) (bool, error) {
	return false, ErrUnsupportedPlatform
}
