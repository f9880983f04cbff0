package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"table-order-kiosk/internal/i18n"
)

type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindDNS          ErrorKind = "dns"
	KindTimeout      ErrorKind = "timeout"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindServer       ErrorKind = "server"
	KindClient       ErrorKind = "client"
)

var fallbackKeys = map[ErrorKind]string{
	KindNetwork:      "api.network",
	KindDNS:          "api.dns",
	KindTimeout:      "api.timeout",
	KindUnauthorized: "api.unauthorized",
	KindForbidden:    "api.forbidden",
	KindNotFound:     "api.not_found",
	KindServer:       "api.server",
	KindClient:       "api.client",
}

func fallbackMessage(kind ErrorKind, lang i18n.Language) string {
	return i18n.T(lang, fallbackKeys[kind])
}

// Error is what every API call returns on failure. Message is safe to show
// to the diner: the server's own message when it sent one, otherwise a
// fixed text for the kind.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	// FromServer marks Message as the backend's own text.
	FromServer bool
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

// Localized is the backend's message verbatim, or the fixed text for the
// kind in lang.
func (e *Error) Localized(lang i18n.Language) string {
	if e.FromServer {
		return e.Message
	}
	return fallbackMessage(e.Kind, lang)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func transportError(err error) *Error {
	kind := KindNetwork
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &dnsErr):
		kind = KindDNS
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = KindNetwork
	}
	return &Error{Kind: kind, Message: fallbackMessage(kind, i18n.Default), Err: err}
}

func statusError(status int, body []byte) *Error {
	kind := KindClient
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusForbidden:
		kind = KindForbidden
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= 500:
		kind = KindServer
	}

	if message := serverMessage(body); message != "" {
		return &Error{Kind: kind, Status: status, Message: message, FromServer: true}
	}
	return &Error{Kind: kind, Status: status, Message: fallbackMessage(kind, i18n.Default)}
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	if msg, ok := payload.Error.(string); ok {
		return strings.TrimSpace(msg)
	}
	return ""
}
