// Package docs holds the OpenAPI document served at /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "User login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/register": {"post": {"tags": ["auth"], "summary": "User registration", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/themes": {
            "get": {"tags": ["themes"], "summary": "List themes", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["themes"], "summary": "Create a theme", "responses": {"201": {"description": "Created"}}}
        },
        "/themes/subscriptions": {"get": {"security": [{"BearerAuth": []}], "tags": ["themes"], "summary": "IDs of the themes the caller follows", "responses": {"200": {"description": "OK"}}}},
        "/themes/{id}": {
            "get": {"tags": ["themes"], "summary": "Get a theme", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["themes"], "summary": "Update a theme", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["themes"], "summary": "Delete a theme", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}}
        },
        "/themes/{id}/subscribe": {"post": {"security": [{"BearerAuth": []}], "tags": ["themes"], "summary": "Subscribe to a theme", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/themes/{id}/unsubscribe": {"post": {"security": [{"BearerAuth": []}], "tags": ["themes"], "summary": "Unsubscribe from a theme", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/articles": {
            "get": {"tags": ["articles"], "summary": "List articles newest first", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Publish an article", "responses": {"201": {"description": "Created"}}}
        },
        "/articles/feed": {"get": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Articles from the caller's subscribed themes", "responses": {"200": {"description": "OK"}}}},
        "/articles/search": {"get": {"tags": ["articles"], "summary": "Case-insensitive title search", "parameters": [{"type": "string", "name": "title", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "204": {"description": "No article matched"}}}},
        "/articles/theme/{id}": {"get": {"tags": ["articles"], "summary": "Articles under a theme", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/articles/user/{id}": {"get": {"tags": ["articles"], "summary": "Articles written by a user", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/articles/{id}": {
            "get": {"tags": ["articles"], "summary": "Get an article", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Edit one of the caller's articles", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["articles"], "summary": "Delete one of the caller's articles", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/comments": {
            "get": {"tags": ["comments"], "summary": "List comments newest first", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Comment on an article", "responses": {"201": {"description": "Created"}}}
        },
        "/comments/article/{id}": {"get": {"tags": ["comments"], "summary": "An article's comment thread", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/comments/user/{id}": {"get": {"tags": ["comments"], "summary": "Comments written by a user", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/comments/{id}": {
            "get": {"tags": ["comments"], "summary": "Get a comment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Edit one of the caller's comments", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["comments"], "summary": "Delete one of the caller's comments", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/users": {"get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}}},
        "/users/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "The authenticated user", "responses": {"200": {"description": "OK"}}}},
        "/users/username/{username}": {"get": {"tags": ["users"], "summary": "Get a user by username", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/users/check/username/{username}": {"get": {"tags": ["users"], "summary": "Whether a username is free", "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/users/check/email/{email}": {"get": {"tags": ["users"], "summary": "Whether an email is free", "parameters": [{"type": "string", "name": "email", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get a user", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update the caller's own account", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete the caller's own account", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/features": {"get": {"security": [{"BearerAuth": []}], "tags": ["features"], "summary": "Configured feature flags and their state for the caller", "responses": {"200": {"description": "OK"}}}},
        "/ws/ticket": {"post": {"security": [{"BearerAuth": []}], "tags": ["realtime"], "summary": "Issue a single-use websocket ticket", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "MDD API",
	Description:      "Themes, articles, comments and subscription feeds.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
