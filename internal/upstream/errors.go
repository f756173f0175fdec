// internal/upstream/errors.go
package upstream

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNetwork возникает, когда запрос не удалось выполнить
	ErrNetwork = errors.New("network error")

	// ErrTimeout возникает при превышении времени ожидания запроса
	ErrTimeout = errors.New("request timeout")

	// ErrStatus возникает при ответе с кодом не из 2xx
	ErrStatus = errors.New("unexpected upstream status")

	// ErrShape возникает, когда payload не прошел проверку контейнера
	ErrShape = errors.New("unexpected upstream payload shape")
)

// NetworkError - запрос не дошел до апстрима или ответ оборвался.
type NetworkError struct {
	Source string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error at %s: %v", e.Source, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// TimeoutError - запрос не уложился в свой таймаут.
type TimeoutError struct {
	Source  string
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request to %s timed out after %s", e.Source, e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// StatusError - апстрим ответил кодом не из 2xx.
type StatusError struct {
	Source     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d from %s, body: %s", e.Source, e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// ShapeError - 2xx-ответ, но payload не того вида.
type ShapeError struct {
	Source string
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid payload: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: invalid payload: %s", e.Source, e.Reason)
}

func (e *ShapeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrShape, e.Err}
	}
	return []error{ErrShape}
}
