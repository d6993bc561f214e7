package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrappedErrorsMatchTheirKind(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{Validationf("age out of range"), ErrValidation},
		{Permissionf("actor 3 cannot add to the queue"), ErrPermission},
		{Statef("entry is completed"), ErrState},
		{NotFoundf("queue entry 9"), ErrNotFound},
		{Gatewayf("upstream returned 500"), ErrGateway},
		{Conflictf("queue number taken"), ErrConflict},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.kind) {
			t.Errorf("errors.Is(%v, %v) = false", c.err, c.kind)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validationf("bad input"), http.StatusUnprocessableEntity},
		{Permissionf("denied"), http.StatusForbidden},
		{Statef("wrong state"), http.StatusConflict},
		{NotFoundf("missing"), http.StatusNotFound},
		{Gatewayf("upstream down"), http.StatusBadGateway},
		{Conflictf("lost race"), http.StatusConflict},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestHTTPStatusSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("enqueue: %w", Validationf("name is required"))
	if got := HTTPStatus(err); got != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus = %d, want 422", got)
	}
}
