package booking

import "errors"

// ErrValidation wraps all malformed-input failures. No state is
// changed when it is returned. Handlers translate it into HTTP 400.
var ErrValidation = errors.New("invalid booking request")

// ErrUnavailable is returned when no room of the requested type is
// free for the requested dates. No booking row is created.
var ErrUnavailable = errors.New("no rooms available")

// ErrGatewayTimeout is returned when the payment gateway did not
// answer in time. Neither terminal status may be assumed; the caller
// should retry verification later.
var ErrGatewayTimeout = errors.New("payment gateway timeout")

// ErrGateway is returned when the gateway answered with a non-success
// envelope or a response missing the expected fields. It must never
// be conflated with a failed payment.
var ErrGateway = errors.New("payment gateway error")
