package linear

import "github.com/YuminosukeSato/scibench/pkg/log"

// Option configures an OLSRegressor.
type Option func(*OLSRegressor)

// WithFitIntercept sets whether to fit an unpenalized intercept.
func WithFitIntercept(fit bool) Option {
	return func(lr *OLSRegressor) {
		lr.fitIntercept = fit
	}
}

// WithL2Regularization sets the ridge penalty on the coefficients. Zero
// gives plain least squares.
func WithL2Regularization(l2 float64) Option {
	return func(lr *OLSRegressor) {
		lr.l2 = l2
	}
}

// WithLogger sets the logger used for training diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(lr *OLSRegressor) {
		lr.logger = logger
	}
}
