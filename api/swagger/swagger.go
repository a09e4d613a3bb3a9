package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Training Import API",
        "description": "Roster import, identity reconciliation and schedule extraction for training sessions",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Sessions", "description": "Training sessions enrollments are bound to"},
        {"name": "Imports", "description": "Roster imports and exception reports"},
        {"name": "Schedules", "description": "Course schedule extraction from documents"},
        {"name": "Stats", "description": "Yearly enrollment statistics"},
        {"name": "Metrics", "description": "Instrumentation"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List training sessions",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Create training session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get training session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/imports": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import a roster into a session",
                "description": "Accepts an xlsx or csv roster. Rows with invalid phones are reported, not fatal. With format=csv|pdf the exception list is returned as a file.",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "phone_mode", "in": "formData", "type": "string", "enum": ["strict", "lenient"]},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ImportReceipt"}},
                    "404": {"description": "Session not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unsupported or unreadable source", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/extract": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Extract a schedule from a docx document",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "default_year", "in": "formData", "type": "integer"},
                    {"name": "location", "in": "formData", "type": "string"},
                    {"name": "session_id", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Unsupported or unreadable source", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/years/{year}": {
            "get": {
                "tags": ["Stats"],
                "summary": "Yearly enrollment summary",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "start_date": {"type": "string", "example": "2024-03-01"},
                "end_date": {"type": "string", "example": "2024-03-05"},
                "location": {"type": "string"}
            },
            "required": ["title", "start_date"]
        },
        "ImportException": {
            "type": "object",
            "properties": {
                "sheet": {"type": "string"},
                "row_index": {"type": "integer"},
                "reason": {"type": "string", "enum": ["invalid_phone", "no_phone_column"]},
                "detail": {"type": "string"}
            }
        },
        "ImportReceipt": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "source_file": {"type": "string"},
                "fingerprint": {"type": "string"},
                "previously_imported": {"type": "boolean"},
                "rows_seen": {"type": "integer"},
                "rows_imported": {"type": "integer"},
                "new_person_count": {"type": "integer"},
                "new_enrollment_count": {"type": "integer"},
                "exception_count": {"type": "integer"},
                "exceptions": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ImportException"}
                }
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
