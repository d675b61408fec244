package settlement

import "errors"

var (
	errNilConfig = errors.New("config cannot be nil")
	errNilRPC    = errors.New("rpc client cannot be nil")
	errNilLogger = errors.New("logger cannot be nil")
)
