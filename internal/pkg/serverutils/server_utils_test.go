package serverutils

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type sampleRequest struct {
	SessionId uuid.UUID `validate:"required"`
	Question  string    `validate:"required,max=10"`
}

func TestValidateRequest(t *testing.T) {
	valid := sampleRequest{SessionId: uuid.New(), Question: "short"}
	if err := ValidateRequest(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	invalid := sampleRequest{Question: "this question is far too long"}
	err := ValidateRequest(invalid)
	if err == nil {
		t.Fatal("invalid request accepted")
	}

	fiberErr, ok := err.(*fiber.Error)
	if !ok {
		t.Fatalf("error type = %T, want *fiber.Error", err)
	}
	if fiberErr.Code != fiber.StatusBadRequest {
		t.Errorf("status = %d, want %d", fiberErr.Code, fiber.StatusBadRequest)
	}
}
