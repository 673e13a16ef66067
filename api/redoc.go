package api

import (
	"html/template"
	"net/http"
)

// redocSpecURL is the OpenAPI document served by the Swagger handler
const redocSpecURL = "/docs/doc.json"

var redocPage = template.Must(template.New("redoc").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - ReDoc</title>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link href="https://fonts.googleapis.com/css?family=Montserrat:300,400,700|Roboto:300,400,700" rel="stylesheet">
<style>body { margin: 0; padding: 0; }</style>
</head>
<body>
<noscript>ReDoc requires Javascript to function. Please enable it to browse the documentation.</noscript>
<redoc spec-url="{{.SpecURL}}"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>
`))

// redoc serves the ReDoc reference page for the API document
func (a *API) redoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := redocPage.Execute(w, struct {
		Title   string
		SpecURL string
	}{Title: Title, SpecURL: redocSpecURL})
	if err != nil {
		a.logger.Errorw("Failed to render ReDoc page",
			"request_id", GetRequestIDOrDefault(r.Context()),
			"error", err)
	}
}
