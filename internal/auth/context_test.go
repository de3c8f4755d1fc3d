// ABOUTME: Tests for identity propagation through context

package auth

import (
	"context"
	"testing"
)

func TestWithIdentityAndFromContext(t *testing.T) {
	id := &Identity{UserID: "user-1", Email: "a@example.com"}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	if got != id {
		t.Errorf("FromContext() = %+v, want the attached identity", got)
	}
}

func TestFromContext_Absent(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %+v, want nil", got)
	}
}

func TestMustFromContext_PanicsWhenAbsent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustFromContext() should panic without identity")
		}
	}()
	MustFromContext(context.Background())
}
