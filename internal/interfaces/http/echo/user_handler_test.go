package echo_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-bulkops/internal/application/user"
	httpecho "github.com/mohammadpnp/user-bulkops/internal/interfaces/http/echo"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGetUserUseCase struct {
	out app.GetUserByIDOutput
	err error
}

func (f *fakeGetUserUseCase) Execute(ctx context.Context, in app.GetUserByIDInput) (app.GetUserByIDOutput, error) {
	if f.err != nil {
		return app.GetUserByIDOutput{}, f.err
	}
	return f.out, nil
}

func TestGetUserByIDHandlerSuccess(t *testing.T) {
	t.Parallel()

	e := echo.New()
	userHandler := httpecho.NewUserHandler(&fakeGetUserUseCase{out: app.GetUserByIDOutput{
		ID:        "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Role:      "customer",
		Status:    "suspended",
		Flags: []app.GetUserFlagOutput{{
			Type:     "manual_review",
			Severity: "medium",
		}},
	}}, nil)
	httpecho.RegisterRoutes(e, nil, nil, userHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}

	data := got["data"].(map[string]any)
	if data["id"] != "a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e" {
		t.Fatalf("unexpected id: %#v", data["id"])
	}
	if flags, _ := data["flags"].([]any); len(flags) != 1 {
		t.Fatalf("expected one flag, got %#v", data["flags"])
	}
}

func TestGetUserByIDHandlerErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		path string
		want int
		code string
	}{
		{"invalid id", app.ErrInvalidUserID, "/api/v1/users/not-uuid", http.StatusBadRequest, "invalid_user_id"},
		{"not found", app.ErrUserNotFound, "/api/v1/users/a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e", http.StatusNotFound, "user_not_found"},
		{"internal", errors.New("boom"), "/api/v1/users/a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e", http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.ErrorLevel)
			e := echo.New()
			httpecho.RegisterRoutes(e, nil, nil, httpecho.NewUserHandler(&fakeGetUserUseCase{err: tc.err}, zap.New(core)))

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if code := decode(t, rec)["error"].(map[string]any)["code"]; code != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, code)
			}

			wantLogs := 0
			if tc.want == http.StatusInternalServerError {
				wantLogs = 1
			}
			if logs.Len() != wantLogs {
				t.Fatalf("expected %d error logs, got %d", wantLogs, logs.Len())
			}
		})
	}
}
