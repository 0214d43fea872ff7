package email

import (
	"strings"
	"testing"
	"time"

	"coupon-api/internal/domain"
)

func TestReceiptBody(t *testing.T) {
	coupon := domain.Coupon{
		Title:   "Cena para dos",
		Price:   49.9,
		EndDate: time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC),
	}

	body := receiptBody("Ana", coupon)
	if !strings.Contains(body, "Hi Ana,") {
		t.Fatalf("missing greeting: %q", body)
	}
	if !strings.Contains(body, `"Cena para dos" for 49.90`) {
		t.Fatalf("missing purchase line: %q", body)
	}
	if !strings.Contains(body, "2026-09-30T12:00:00Z") {
		t.Fatalf("missing end date: %q", body)
	}

	// Sin nombre, el saludo es generico.
	if body := receiptBody("  ", coupon); !strings.Contains(body, "Hi,") {
		t.Fatalf("expected generic greeting: %q", body)
	}
}

func TestBuildMessage_Headers(t *testing.T) {
	msg := buildMessage("no-reply@coupon.dev", "Coupon API", "ana@test.com", "Purchase receipt: X", "cuerpo")

	if !strings.HasPrefix(msg, "From: Coupon API <no-reply@coupon.dev>\r\n") {
		t.Fatalf("unexpected from header: %q", msg)
	}
	if !strings.Contains(msg, "To: ana@test.com\r\n") {
		t.Fatalf("missing to header: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\ncuerpo") {
		t.Fatalf("body not separated from headers: %q", msg)
	}
}
