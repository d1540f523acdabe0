// FILE: src/internal/core/errors.go
package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorFields converts a caught error into the metadata fields attached to
// error events. Errors created without a stack get one captured here.
// The error name skips message and stack wrappers down to the first error
// carrying its own type.
func ErrorFields(err error) map[string]any {
	if IsNilError(err) {
		return nil
	}

	name := errorTypeName(err)
	withStack := err
	if errors.GetReportableStackTrace(err) == nil {
		// Skip ErrorFields and the facade method calling it
		withStack = errors.WithStackDepth(err, 2)
	}

	return map[string]any{
		FieldError:      err.Error(),
		FieldErrorName:  name,
		FieldErrorStack: fmt.Sprintf("%+v", withStack),
	}
}

// IsNilError reports whether err is nil or a nil pointer stored in a
// non-nil error interface.
func IsNilError(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func errorTypeName(err error) string {
	for {
		cause := errors.UnwrapOnce(err)
		if IsNilError(cause) || !isWrapperType(err) {
			break
		}
		err = cause
	}
	return fmt.Sprintf("%T", err)
}

// isWrapperType matches the wrappers produced by fmt.Errorf and the errors package
func isWrapperType(err error) bool {
	t := reflect.TypeOf(err)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pkg := t.PkgPath()
	return pkg == "fmt" || strings.HasPrefix(pkg, "github.com/cockroachdb/errors")
}
