package components

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a provider or receiver kind name cannot be parsed.
var ErrUnknownKind = errors.New("components: unknown kind")

// String returns the display name for a StaticProviderKind.
func (k StaticProviderKind) String() string {
	names := ProviderKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ProviderKindNames returns the names of all provider kinds.
// The order matches the StaticProviderKind constants.
func ProviderKindNames() []string {
	return []string{"normal", "sticky"}
}

// ParseProviderKind converts a name into a StaticProviderKind.
func ParseProviderKind(name string) (StaticProviderKind, error) {
	for i, n := range ProviderKindNames() {
		if n == name {
			return StaticProviderKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: provider %q", ErrUnknownKind, name)
}

// String returns the display name for a StaticReceiverKind.
func (k StaticReceiverKind) String() string {
	names := ReceiverKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// ReceiverKindNames returns the names of all receiver kinds.
// The order matches the StaticReceiverKind constants.
func ReceiverKindNames() []string {
	return []string{"normal", "stop", "go_around"}
}

// ParseReceiverKind converts a name into a StaticReceiverKind.
func ParseReceiverKind(name string) (StaticReceiverKind, error) {
	for i, n := range ReceiverKindNames() {
		if n == name {
			return StaticReceiverKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: receiver %q", ErrUnknownKind, name)
}
