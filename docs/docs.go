// Package docs holds the swagger document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/scans": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Submit a host and a port range and let the service probe it asynchronously. port_end is exclusive; the ports field accepts an inclusive start-end expression instead.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Scans"],
                "summary": "Create a new scan task",
                "parameters": [
                    {
                        "description": "Scan request parameters",
                        "name": "scanRequest",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.CreateScanRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Scan accepted", "schema": {"$ref": "#/definitions/api.ScanAcceptedResponse"}},
                    "400": {"description": "Malformed JSON body or failed validation", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Missing or incorrect API key", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal error while persisting or queueing the task", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/scans/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Retrieve a snapshot of a scan task. Poll until the status is completed or failed.",
                "produces": ["application/json"],
                "tags": ["Scans"],
                "summary": "Get scan status and results",
                "parameters": [
                    {"type": "string", "description": "Scan Task ID (UUID v4)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Current task snapshot", "schema": {"$ref": "#/definitions/api.ScanTask"}},
                    "400": {"description": "Malformed task identifier", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Missing or incorrect API key", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Task with the provided ID does not exist", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal error when loading the task", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness and store connectivity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}},
                    "503": {"description": "Store unreachable", "schema": {"$ref": "#/definitions/api.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.CreateScanRequest": {
            "type": "object",
            "required": ["host"],
            "properties": {
                "host": {"type": "string", "example": "127.0.0.1"},
                "port_start": {"type": "integer", "example": 8000},
                "port_end": {"type": "integer", "example": 8100},
                "ports": {"type": "string", "example": "8000-8099"},
                "batch_width": {"type": "integer", "example": 256}
            }
        },
        "api.ScanAcceptedResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid", "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"},
                "status": {"type": "string", "enum": ["pending"], "example": "pending"}
            }
        },
        "api.ScanSummary": {
            "type": "object",
            "properties": {
                "probed": {"type": "integer", "example": 100},
                "closed": {"type": "integer", "example": 98},
                "failed": {"type": "integer", "example": 0},
                "exhausted": {"type": "integer", "example": 0},
                "batches": {"type": "integer", "example": 4},
                "duration_ms": {"type": "integer", "example": 1012}
            }
        },
        "api.ScanTask": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid", "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"},
                "status": {"type": "string", "enum": ["pending", "running", "completed", "failed"], "example": "pending"},
                "host": {"type": "string", "example": "127.0.0.1"},
                "port_start": {"type": "integer", "example": 8000},
                "port_end": {"type": "integer", "example": 8100},
                "batch_width": {"type": "integer", "example": 256},
                "open": {"type": "array", "items": {"type": "string"}, "example": ["127.0.0.1:8080", "127.0.0.1:8081"]},
                "summary": {"$ref": "#/definitions/api.ScanSummary"},
                "created_at": {"type": "string", "format": "date-time", "example": "2024-01-02T15:04:05Z"},
                "started_at": {"type": "string", "format": "date-time", "example": "2024-01-02T15:04:06Z"},
                "completed_at": {"type": "string", "format": "date-time", "example": "2024-01-02T15:06:30Z"},
                "error": {"type": "string", "example": "invalid port range"}
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "store": {"type": "string", "example": "ok"}
            }
        },
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "task not found"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "tcpsweep API",
	Description:      "Asynchronous TCP connect port scanning.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
