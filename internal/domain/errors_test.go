package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	base := NotFoundError{Resource: "ticket", ID: "TKT-1"}
	wrapped := fmt.Errorf("promote: %w", base)
	if !IsNotFound(wrapped) {
		t.Fatalf("expected not found through wrap")
	}
	if IsValidation(wrapped) || IsInternal(wrapped) {
		t.Fatalf("unexpected predicate match")
	}
	if base.Error() != "ticket TKT-1 not found" {
		t.Fatalf("message = %q", base.Error())
	}
}

func TestInternalErrorKeepsSentinel(t *testing.T) {
	err := InternalError{Msg: "delete pending ticket", Err: ErrPromoteIncomplete}
	if !errors.Is(err, ErrPromoteIncomplete) {
		t.Fatalf("sentinel lost")
	}
	if !IsInternal(err) {
		t.Fatalf("expected internal")
	}
}

func TestQueueTypeContains(t *testing.T) {
	if !QueueAC.Contains("3a") || QueueAC.Contains("SL") {
		t.Fatalf("AC queue membership wrong")
	}
	if !QueueNonAC.Contains("2S") || QueueNonAC.Contains("CC") {
		t.Fatalf("NON_AC queue membership wrong")
	}
	if !ParseQueueType("").Contains("anything") {
		t.Fatalf("empty queue should contain all classes")
	}
	if ParseQueueType("non_ac") != QueueNonAC {
		t.Fatalf("parse non_ac failed")
	}
	if !IsUnauthorized(UnauthorizedError{}) {
		t.Fatalf("unauthorized predicate")
	}
}
