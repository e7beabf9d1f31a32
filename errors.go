package birnnclf

import "github.com/pkg/errors"

// Error kinds surfaced by the classifier. Every failure returned from Fit,
// Evaluate or Forward wraps exactly one of these, so callers can test with
// errors.Is.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrNumericalInstability = errors.New("numerical instability")
)

func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

func shapef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrShapeMismatch, format, args...)
}

// graphErr tags a gorgonia construction failure. Graph ops only fail on
// incompatible operand shapes here.
func graphErr(err error, op string) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: %v", op, err)
}
