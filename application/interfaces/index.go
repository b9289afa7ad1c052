package interfaces

import (
	"context"
	"net/http"
)

// ApplicationContext carries a request through the application layer without
// tying it to the HTTP framework.
type ApplicationContext[T any] struct {
	Ctx        any
	Body       *T
	Keys       map[string]any
	Header     http.Header
	Param      map[string]any
	Query      map[string]any
	DeviceID   string
	UserAgent  string
	DeviceName string
	ClientIP   string
}

func (ac *ApplicationContext[T]) GetHeader(key string) *string {
	if ac.Header == nil {
		return nil
	}
	values := ac.Header.Values(key)
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

func (ac *ApplicationContext[T]) SetContextData(key string, data any) {
	if ac.Keys == nil {
		ac.Keys = map[string]any{}
	}
	ac.Keys[key] = data
}

func (ac *ApplicationContext[T]) GetContextData(key string) any {
	return ac.Keys[key]
}

func (ac *ApplicationContext[T]) GetStringContextData(key string) string {
	value, _ := ac.Keys[key].(string)
	return value
}

func (ac *ApplicationContext[T]) GetStringParameter(key string) string {
	value, _ := ac.Param[key].(string)
	return value
}

// Context returns the request scoped context. Framework contexts that
// implement context.Context are used as is.
func (ac *ApplicationContext[T]) Context() context.Context {
	if ctx, ok := ac.Ctx.(context.Context); ok {
		return ctx
	}
	return context.Background()
}
