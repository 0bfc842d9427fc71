// Package contracts defines the request and response shapes of the HTTP api,
// including the envelope every endpoint answers with.
package contracts

type ServiceResponse[T any] struct {
	Data  *T     `json:"data"`
	Error string `json:"error"`
}

func GetServiceResponseOk[T any](data *T) ServiceResponse[T] {
	return ServiceResponse[T]{
		Data:  data,
		Error: "",
	}
}

func GetServiceResponseError(errorMessage string) ServiceResponse[any] {
	return ServiceResponse[any]{
		Data:  nil,
		Error: errorMessage,
	}
}
