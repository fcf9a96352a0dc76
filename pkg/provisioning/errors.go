package provisioning

import (
	"errors"
	"fmt"
)

var (
	// ErrTopicNotFound is returned when a topic is missing and auto-creation is disabled.
	ErrTopicNotFound = errors.New("topic does not exist")
	// ErrSubscriptionNotFound is returned when a subscription is missing and auto-creation is disabled.
	ErrSubscriptionNotFound = errors.New("subscription does not exist")
	// ErrTopicMismatch is returned when an existing subscription is bound to a different topic.
	ErrTopicMismatch = errors.New("subscription bound to a different topic")
)

// ProvisioningError reports a failed provisioning call.
type ProvisioningError struct {
	Op       string
	Resource string
	Err      error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning %s '%s': %v", e.Op, e.Resource, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

func provisioningErr(op, resource string, err error) *ProvisioningError {
	return &ProvisioningError{Op: op, Resource: resource, Err: err}
}

// IsProvisioningError reports whether err is, or wraps, a *ProvisioningError.
func IsProvisioningError(err error) bool {
	var pErr *ProvisioningError
	return errors.As(err, &pErr)
}
