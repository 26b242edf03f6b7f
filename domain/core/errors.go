package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrLengthMismatch           = errors.New("dim and milk recordings must have the same length")
	ErrInsufficientData         = errors.New("at least two non-missing points are required")
	ErrInvalidFittingMode       = errors.New("fitting method must be either frequentist or bayesian")
	ErrInvalidBreed             = errors.New("breed must be either Holstein 'H' or Jersey 'J'")
	ErrInvalidRegion            = errors.New("region must be 'USA' or 'EU'")
	ErrInvalidPersistencyMethod = errors.New("persistency method must be either 'derived' or 'literature'")
	ErrInvalidLactationLength   = errors.New("lactation length must be a positive integer or 'max'")
	ErrInvalidMilkUnit          = errors.New("milk unit must be 'kg' or 'lb'")
	ErrInvalidPriors            = errors.New("custom priors must be 'CHEN' or a full prior set")

	// Model and characteristic support errors
	ErrUnknownModel                = errors.New("unknown lactation curve model")
	ErrUnsupportedModel            = errors.New("model does not support fitting")
	ErrUnknownCharacteristic       = errors.New("unknown characteristic")
	ErrUnsupportedPersistencyModel = errors.New("no literature persistency formula for model")
	ErrUnsupportedBayesianModel    = errors.New("bayesian fitting is only implemented for the milkbot model")

	// Symbolic derivation errors
	ErrNoPeakSolution    = errors.New("no positive real solution for time to peak")
	ErrInvalidExpression = errors.New("symbolic expression is not safe to evaluate")

	// Remote fitting errors
	ErrMissingAPIKey         = errors.New("api key required for bayesian fitting")
	ErrRemoteFit             = errors.New("remote fitting failed")
	ErrUnexpectedResponse    = errors.New("unexpected fitting response format")
	ErrZeroDecay             = errors.New("division by zero: decay parameter is zero")
	ErrCharacteristicInvalid = errors.New("could not compute characteristic from fitted parameters")

	// Tabular input errors
	ErrMissingDayColumn   = errors.New("no days-in-milk column found")
	ErrMissingYieldColumn = errors.New("no milking-yield column found")
)

// NewValidationError attaches a field name to a validation sentinel.
func NewValidationError(sentinel error, field string, value any) error {
	return fmt.Errorf("%w: %s=%v", sentinel, field, value)
}

// NewRemoteFitError wraps a transport or HTTP failure from the fitting service.
func NewRemoteFitError(err error) error {
	return fmt.Errorf("%w: %v", ErrRemoteFit, err)
}

// IsValidationError reports whether err belongs to the input-validation class.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidFittingMode) ||
		errors.Is(err, ErrInvalidBreed) ||
		errors.Is(err, ErrInvalidRegion) ||
		errors.Is(err, ErrInvalidPersistencyMethod) ||
		errors.Is(err, ErrInvalidLactationLength) ||
		errors.Is(err, ErrInvalidMilkUnit) ||
		errors.Is(err, ErrInvalidPriors)
}

// IsSupportError reports whether err belongs to the model/characteristic support class.
func IsSupportError(err error) bool {
	return errors.Is(err, ErrUnknownModel) ||
		errors.Is(err, ErrUnsupportedModel) ||
		errors.Is(err, ErrUnknownCharacteristic) ||
		errors.Is(err, ErrUnsupportedPersistencyModel) ||
		errors.Is(err, ErrUnsupportedBayesianModel)
}

// IsRemoteError reports whether err belongs to the remote-service class.
func IsRemoteError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrRemoteFit) ||
		errors.Is(err, ErrUnexpectedResponse)
}
