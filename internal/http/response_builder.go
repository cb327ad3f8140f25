// Package http provides HTTP server and handler implementations.
//
// This file implements the builder for HTMX fragment responses and the
// JSON and error helpers shared by the API handlers.
package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"budgetly/internal/core"
	"budgetly/internal/log"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerExpenseChanged tells listening panels that an expense in
// year/month was created, updated or deleted.
func (b *HTMXResponseBuilder) TriggerExpenseChanged(d core.Date) *HTMXResponseBuilder {
	return b.Trigger("expense:changed", map[string]int{"year": d.Year(), "month": d.Month()})
}

func (b *HTMXResponseBuilder) TriggerBudgetChanged(c core.Category) *HTMXResponseBuilder {
	return b.Trigger("budget:changed", map[string]string{"category": string(c)})
}

func (b *HTMXResponseBuilder) TriggerIncomeChanged() *HTMXResponseBuilder {
	return b.Trigger("income:changed", struct{}{})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyHTML sets an HTML fragment as the body.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Message sets an escaped notice fragment of the given class.
func (b *HTMXResponseBuilder) Message(class, text string) *HTMXResponseBuilder {
	return b.BodyHTML(`<div class="` + class + `">` + template.HTMLEscapeString(text) + `</div>`)
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse builds an escaped error fragment.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().Status(statusCode).Message("error", message)
}

// statusFor maps an error kind to the HTTP status it is surfaced as.
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusUnprocessableEntity
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is what a client sees for err. Internal failures are not
// described.
func publicMessage(err error) string {
	switch core.KindOf(err) {
	case core.KindValidation, core.KindNotFound:
		return err.Error()
	case core.KindConnection:
		return "The database is unavailable. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// logFailure logs err at WARN for client mistakes and ERROR otherwise.
func logFailure(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if code := statusFor(err); code < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	log.FromContext(r.Context()).Log(r.Context(), level, msg,
		log.FieldComponent, log.ComponentHTTP,
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(r, "API request failed", err)
	writeJSON(w, statusFor(err), apiError{Error: publicMessage(err), Kind: core.KindOf(err).String()})
}
