package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kilter Intake API",
        "description": "Video intake form with a weekly quota and a password-gated admin view",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Intake", "description": "Public upload form"},
        {"name": "Admin", "description": "Password-gated reporting"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/intake": {
            "get": {
                "tags": ["Intake"],
                "summary": "Intake form status",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Form status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/submissions": {
            "post": {
                "tags": ["Intake"],
                "summary": "Submit a climbing video",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "video", "in": "formData", "type": "file", "required": true, "description": "mp4, mov, avi or mkv, at most 200MB"},
                    {"name": "name", "in": "formData", "type": "string", "required": true},
                    {"name": "email", "in": "formData", "type": "string", "required": true},
                    {"name": "problem_grade", "in": "formData", "type": "string", "required": true, "enum": ["V0-V2", "V3-V4", "V5-V6", "V7-V8", "V9+"]},
                    {"name": "problem_name", "in": "formData", "type": "string", "required": false},
                    {"name": "notes", "in": "formData", "type": "string", "required": false, "maxLength": 500},
                    {"name": "consent", "in": "formData", "type": "boolean", "required": true}
                ],
                "responses": {
                    "201": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation errors listed in error.details", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Weekly quota reached", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Upload failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/videos/download": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download a stored video via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Video bytes"},
                    "401": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Admin login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdminLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Incorrect password", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Admin password not configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/logout": {
            "post": {
                "tags": ["Admin"],
                "summary": "Admin logout",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Session revoked"}
                }
            }
        },
        "/api/v1/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Total, weekly and remaining counts",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Stats", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/submissions": {
            "get": {
                "tags": ["Admin"],
                "summary": "Most recent submissions, newest first",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "required": false, "default": 10, "maximum": 100}
                ],
                "responses": {
                    "200": {"description": "Rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download the submission log",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"},
                    "404": {"description": "No submissions yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/export/pdf": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download a PDF summary",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/api/v1/admin/videos": {
            "get": {
                "tags": ["Admin"],
                "summary": "List stored videos with signed download links",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Videos", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/videos/{name}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download a stored video",
                "security": [{"BearerAuth": []}],
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "name", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Video bytes"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/week/reset": {
            "post": {
                "tags": ["Admin"],
                "summary": "Explain the automatic weekly reset",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Next reset instant", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/data": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Delete all data (always refused)",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "responses": {
                    "403": {"description": "Refused", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AdminLoginRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
