// Package docs registers the OpenAPI description served under /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new account", "responses": {"201": {"description": "Created"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "responses": {"200": {"description": "OK"}}}},
        "/sessions": {
            "get": {"tags": ["sessions"], "summary": "List sessions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["sessions"], "summary": "Create a session and start pairing", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/sessions/{id}": {
            "get": {"tags": ["sessions"], "summary": "Get a session", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["sessions"], "summary": "Delete a session, its credentials and all its data", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{id}/qr": {"get": {"tags": ["sessions"], "summary": "Current pairing code as a PNG image", "produces": ["image/png"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/sessions/{id}/messages": {
            "get": {"tags": ["messages"], "summary": "List stored messages", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "chat", "in": "query", "type": "string"}, {"name": "page", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["messages"], "summary": "Send a text or media message", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{id}/autoreplies": {"post": {"tags": ["bot"], "summary": "Add a keyword auto-reply rule", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "Created"}}}},
        "/sessions/{id}/schedules": {"post": {"tags": ["schedules"], "summary": "Schedule a message", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"201": {"description": "Created"}}}},
        "/webhooks": {"post": {"tags": ["webhooks"], "summary": "Register a webhook", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "WA-AKG Gateway API",
	Description:      "Multi-session messaging gateway with webhooks, auto-replies and scheduled messages.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
