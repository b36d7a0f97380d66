// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go
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
    "securityDefinitions": {
        "CookieAuth": {
            "type": "apiKey",
            "name": "auth_token",
            "in": "header",
            "description": "Session token delivered in the auth_token cookie"
        }
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loginResponse"}},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Logout", "responses": {"204": {"description": "No Content"}}}
        },
        "/auth/logout-all": {
            "post": {
                "tags": ["auth"], "summary": "Sign out everywhere", "security": [{"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/revokedResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["auth"], "summary": "Current identity", "security": [{"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Identity"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/sessions": {
            "get": {
                "tags": ["auth"], "summary": "Active sessions", "security": [{"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/sessionResponse"}}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/password": {
            "post": {
                "tags": ["auth"], "summary": "Change password", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/changePasswordRequest"}}],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/admin/users": {
            "post": {
                "tags": ["admin"], "summary": "Create user", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/createUserRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/userResponse"}}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}
            }
        },
        "/admin/users/{id}/deactivate": {
            "post": {
                "tags": ["admin"], "summary": "Deactivate user", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/revokedResponse"}}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/admin/users/{id}/sign-out": {
            "post": {
                "tags": ["admin"], "summary": "Force sign-out", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/revokedResponse"}}, "403": {"description": "Forbidden"}}
            }
        },
        "/admin/sessions/sweep": {
            "post": {
                "tags": ["admin"], "summary": "Sweep expired sessions", "security": [{"CookieAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/sweepResponse"}}, "403": {"description": "Forbidden"}}
            }
        },
        "/v1/reports": {
            "post": {
                "tags": ["reports"], "summary": "Create daily report", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/createReportRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Report"}}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            },
            "get": {
                "tags": ["reports"], "summary": "List all reports", "security": [{"CookieAuth": []}],
                "parameters": [
                    {"in": "query", "name": "user_id", "type": "integer"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "from", "type": "string"},
                    {"in": "query", "name": "to", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/reportPageResponse"}}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}
            }
        },
        "/v1/reports/mine": {
            "get": {
                "tags": ["reports"], "summary": "List own reports", "security": [{"CookieAuth": []}],
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "from", "type": "string"},
                    {"in": "query", "name": "to", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/reportPageResponse"}}, "401": {"description": "Unauthorized"}}
            }
        },
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "loginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "loginResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/userResponse"}, "expires_at": {"type": "string", "format": "date-time"}}
        },
        "changePasswordRequest": {
            "type": "object",
            "required": ["current_password", "new_password"],
            "properties": {"current_password": {"type": "string"}, "new_password": {"type": "string", "minLength": 8}}
        },
        "createUserRequest": {
            "type": "object",
            "required": ["username", "password", "role"],
            "properties": {
                "username": {"type": "string", "maxLength": 64},
                "password": {"type": "string", "minLength": 8},
                "role": {"type": "string", "enum": ["admin", "manager", "programmer"]}
            }
        },
        "userResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "active": {"type": "boolean"},
                "last_login_at": {"type": "string", "format": "date-time"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "sessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "ip_address": {"type": "string"},
                "user_agent": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "expires_at": {"type": "string", "format": "date-time"},
                "current": {"type": "boolean"}
            }
        },
        "revokedResponse": {"type": "object", "properties": {"revoked": {"type": "integer"}}},
        "sweepResponse": {"type": "object", "properties": {"removed": {"type": "integer"}}},
        "domain.Identity": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "session_id": {"type": "string"}
            }
        },
        "createReportRequest": {
            "type": "object",
            "required": ["summary"],
            "properties": {
                "report_date": {"type": "string", "example": "2026-01-31"},
                "summary": {"type": "string"},
                "tasks": {"type": "array", "items": {"type": "string"}},
                "blockers": {"type": "string"},
                "hours_spent": {"type": "number", "minimum": 0, "maximum": 24}
            }
        },
        "domain.Report": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "integer"},
                "username": {"type": "string"},
                "report_date": {"type": "string", "format": "date-time"},
                "summary": {"type": "string"},
                "tasks": {"type": "array", "items": {"type": "string"}},
                "blockers": {"type": "string"},
                "hours_spent": {"type": "number"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "reportPageResponse": {
            "type": "object",
            "properties": {
                "reports": {"type": "array", "items": {"$ref": "#/definitions/domain.Report"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "limit": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Reporting System API",
	Description:      "Authentication, session management and daily reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
