package ocr

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/mxppxm/english-tutor/internal/config"
	"github.com/mxppxm/english-tutor/internal/llm"
)

type stubVision struct {
	text string
	err  error

	gotKey         string
	gotImage       string
	gotInstruction string
}

func (s *stubVision) OCRImage(_ context.Context, apiKey, image, instruction string) (string, error) {
	s.gotKey = apiKey
	s.gotImage = image
	s.gotInstruction = instruction
	return s.text, s.err
}

func newTestApp(cfg config.Config, gw Gateway) *fiber.App {
	app := fiber.New()
	app.Post("/v1/ocr", NewHandler(cfg, gw).HandleOCR)
	return app
}

func postOCR(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/ocr", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return res.StatusCode, string(b)
}

func TestHandleOCRSuccess(t *testing.T) {
	gw := &stubVision{text: "  Hello from the image.  "}
	app := newTestApp(config.Config{}, gw)

	status, body := postOCR(t, app, `{"image":"aGVsbG8=","apiKey":"user-key"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, body = %s", status, body)
	}
	if !gjson.Get(body, "success").Bool() {
		t.Fatalf("success = false: %s", body)
	}
	if got := gjson.Get(body, "extractedText").String(); got != "Hello from the image." {
		t.Fatalf("extracted = %q", got)
	}
	if !gjson.Get(body, "metadata.hasContent").Bool() {
		t.Fatal("hasContent = false")
	}
	if gw.gotKey != "user-key" || gw.gotImage != "aGVsbG8=" {
		t.Fatalf("gateway got key=%q image=%q", gw.gotKey, gw.gotImage)
	}
	if gw.gotInstruction == "" {
		t.Fatal("instruction not forwarded")
	}
}

func TestHandleOCRMissingImage(t *testing.T) {
	app := newTestApp(config.Config{}, &stubVision{})
	status, body := postOCR(t, app, `{"apiKey":"k"}`)
	if status != fiber.StatusBadRequest || !strings.Contains(body, "缺少图片数据") {
		t.Fatalf("status = %d, body = %s", status, body)
	}
}

func TestHandleOCRFallsBackToConfiguredKey(t *testing.T) {
	gw := &stubVision{text: "ok text"}
	app := newTestApp(config.Config{DoubaoAPIKey: "server-key"}, gw)

	status, _ := postOCR(t, app, `{"image":"aGVsbG8="}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if gw.gotKey != "server-key" {
		t.Fatalf("key = %q", gw.gotKey)
	}
}

func TestHandleOCRMissingKey(t *testing.T) {
	app := newTestApp(config.Config{}, &stubVision{})
	status, body := postOCR(t, app, `{"image":"aGVsbG8="}`)
	if status != fiber.StatusBadRequest || !strings.Contains(body, "缺少API密钥") {
		t.Fatalf("status = %d, body = %s", status, body)
	}
}

func TestHandleOCRTimeoutMessage(t *testing.T) {
	gw := &stubVision{err: &llm.TimeoutError{Provider: llm.ProviderDoubao}}
	app := newTestApp(config.Config{}, gw)

	status, body := postOCR(t, app, `{"image":"aGVsbG8=","apiKey":"k"}`)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "图片识别超时") {
		t.Fatalf("body = %s", body)
	}
	if gjson.Get(body, "success").Bool() {
		t.Fatal("success must be false on failure")
	}
}
