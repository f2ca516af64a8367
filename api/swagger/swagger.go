package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Abogida API",
        "description": "School management backend: daily updates feed, attendance, dashboards",
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
        {"name": "Auth", "description": "Sessions and credentials"},
        {"name": "Updates", "description": "Daily updates feed and media"},
        {"name": "Attendance", "description": "Per-class attendance records"},
        {"name": "Dashboards", "description": "Per-role landing page summaries"},
        {"name": "Reports", "description": "Attendance report exports"}
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
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/media/download": {
            "get": {
                "tags": ["Updates"],
                "summary": "Download media by signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File contents"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change password and revoke sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current session claims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/updates": {
            "get": {
                "tags": ["Updates"],
                "summary": "List one feed page",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "class_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Updates"],
                "summary": "Post a daily update with optional attachment",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "class_id", "in": "formData", "required": true, "type": "string"},
                    {"name": "text", "in": "formData", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created; meta.media_error set when the attachment failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller does not teach the class"}
                }
            }
        },
        "/api/v1/classes": {
            "get": {
                "summary": "List classes visible to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "summary": "List students visible to the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "class_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/announcements": {
            "get": {
                "summary": "List school announcements",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance for a class and date",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "class_id", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for a class",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Caller does not teach the class"}
                }
            }
        },
        "/api/v1/dashboard/teacher": {
            "get": {
                "tags": ["Dashboards"],
                "summary": "Teacher summary counts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK; meta.cache_hit reports cache usage", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/dashboard/parent": {
            "get": {
                "tags": ["Dashboards"],
                "summary": "Parent summary counts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/dashboard/admin": {
            "get": {
                "tags": ["Dashboards"],
                "summary": "School admin summary counts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/users/me": {
            "get": {
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "summary": "Update profile name and language",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/reports/attendance": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export an attendance report",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "class_id", "in": "query", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["current_password", "new_password"]
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "full_name": {"type": "string"},
                "language_preference": {"type": "string"}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "string"},
                "date": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttendanceEntry"}
                }
            },
            "required": ["class_id", "date", "entries"]
        },
        "AttendanceEntry": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent", "late", "excused"]},
                "notes": {"type": "string"}
            },
            "required": ["student_id", "status"]
        },
        "DailyUpdate": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "school_id": {"type": "string"},
                "class_id": {"type": "string"},
                "teacher_id": {"type": "string"},
                "text_content": {"type": "string"},
                "created_at": {"type": "string"},
                "teacher_name": {"type": "string"},
                "class_name": {"type": "string"}
            }
        },
        "MediaPreview": {
            "type": "object",
            "properties": {
                "asset_id": {"type": "string"},
                "update_id": {"type": "string"},
                "file_name": {"type": "string"},
                "file_type": {"type": "string"},
                "url": {"type": "string"},
                "expires_at": {"type": "string"},
                "resolved": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
