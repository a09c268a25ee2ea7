package main

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/tomfrenzel/authkit-login/internal/jwt"
)

//go:embed templates/home.html
var homeTemplateHTML string

//go:embed templates/callback.html
var callbackTemplateHTML string

var homeTemplate = template.Must(template.New("home").Parse(homeTemplateHTML))
var callbackTemplate = template.Must(template.New("callback").Parse(callbackTemplateHTML))

// homePage is rendered at / and after login or logout actions.
type homePage struct {
	Email           string
	HasToken        bool
	Claims          *jwt.TokenClaims
	TokenExpired    bool
	LogoutDisabled  bool
	Error           string
	Info            string
	RedirectURI     string
	LogoutURL       string
	LogoutOthersURL string
}

// callbackPage is rendered once per callback activation.
type callbackPage struct {
	Status             string
	Error              string
	BackendCallbackURL string
}

func render(w http.ResponseWriter, logger *slog.Logger, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logger.Error("render template", "template", tmpl.Name(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
