// Package docs holds the Swagger specification served at /docs.
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
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/states": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hosts"],
                "summary": "List host lifecycle states",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatesResponse"}}}
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Host inventory statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.Statistics"}}}
            }
        },
        "/hosts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hosts"],
                "summary": "List hosts",
                "parameters": [
                    {"type": "string", "description": "Filter by lifecycle state", "name": "state", "in": "query"},
                    {"type": "string", "description": "Filter by datacenter", "name": "datacenter", "in": "query"},
                    {"type": "integer", "description": "Page size (default 100, max 1000)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Page offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.PaginatedHostsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["hosts"],
                "summary": "Register a host",
                "parameters": [
                    {"description": "Host", "name": "host", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.CreateHostRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Host"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/hosts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["hosts"],
                "summary": "Get a host",
                "parameters": [{"type": "string", "description": "Host ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Host"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["hosts"],
                "summary": "Delete a host",
                "parameters": [{"type": "string", "description": "Host ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/hosts/{id}/state": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["hosts"],
                "summary": "Move a host to a lifecycle state",
                "parameters": [
                    {"type": "string", "description": "Host ID", "name": "id", "in": "path", "required": true},
                    {"description": "Target state", "name": "state", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.SetStateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StateChangeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/hosts/{id}/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List the jobs a host can run in its current state",
                "parameters": [{"type": "string", "description": "Host ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HostJobsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/hosts/{id}/jobs/{job}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Check whether a job may run on a host",
                "parameters": [
                    {"type": "string", "description": "Host ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Job name", "name": "job", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.JobCheckResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            },
            "post": {
                "description": "The job is accepted only if the host's state allows it at the moment of dispatch.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Dispatch a job to a host",
                "parameters": [
                    {"type": "string", "description": "Host ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Job name", "name": "job", "in": "path", "required": true}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/api.JobCheckResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List registered host jobs",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.JobsResponse"}}}
            }
        },
        "/jobs/{job}/dispatch": {
            "post": {
                "description": "Each host is checked independently; ineligible hosts are reported, not fatal.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Dispatch a job to several hosts",
                "parameters": [
                    {"type": "string", "description": "Job name", "name": "job", "in": "path", "required": true},
                    {"description": "Hosts", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.BulkDispatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BulkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/validate/host": {
            "post": {
                "description": "Checks JSON-LD structure, field constraints and the lifecycle state without storing anything.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["validation"],
                "summary": "Validate a host document",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/validation.ValidationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/validation.ValidationResult"}}
                }
            }
        },
        "/ws/events": {
            "get": {
                "description": "Establishes a WebSocket connection that receives state changes and job dispatch outcomes",
                "produces": ["application/json"],
                "tags": ["websocket"],
                "summary": "WebSocket stream of host events",
                "responses": {"101": {"description": "Switching Protocols", "schema": {"type": "string"}}}
            }
        },
        "/ws/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["websocket"],
                "summary": "Get WebSocket statistics",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}}
            }
        }
    },
    "definitions": {
        "api.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "details": {"type": "string"},
                "field_errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "context": {"type": "object", "additionalProperties": true}
            }
        },
        "api.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "id": {"type": "string"}}
        },
        "api.StatesResponse": {
            "type": "object",
            "properties": {"count": {"type": "integer"}, "states": {"type": "array", "items": {"type": "string"}}}
        },
        "api.PaginatedHostsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "hosts": {"type": "array", "items": {"$ref": "#/definitions/models.Host"}}
            }
        },
        "api.CreateHostRequest": {
            "type": "object",
            "required": ["name", "hostState"],
            "properties": {
                "@id": {"type": "string"},
                "name": {"type": "string", "maxLength": 253},
                "ipAddress": {"type": "string"},
                "location": {"type": "string", "maxLength": 128},
                "hostState": {"type": "string", "example": "packages_installed"}
            }
        },
        "api.SetStateRequest": {
            "type": "object",
            "required": ["state"],
            "properties": {"state": {"type": "string", "example": "managed"}}
        },
        "api.StateChangeResponse": {
            "type": "object",
            "properties": {
                "host": {"$ref": "#/definitions/models.Host"},
                "previousState": {"type": "string"},
                "state": {"type": "string"}
            }
        },
        "api.JobsResponse": {
            "type": "object",
            "properties": {"count": {"type": "integer"}, "jobs": {"type": "array", "items": {"type": "string"}}}
        },
        "api.HostJobsResponse": {
            "type": "object",
            "properties": {
                "host": {"type": "string"},
                "state": {"type": "string"},
                "count": {"type": "integer"},
                "jobs": {"type": "array", "items": {"type": "string"}}
            }
        },
        "api.JobCheckResponse": {
            "type": "object",
            "properties": {
                "job": {"type": "string"},
                "host": {"type": "string"},
                "state": {"type": "string"},
                "canRun": {"type": "boolean"}
            }
        },
        "api.BulkDispatchRequest": {
            "type": "object",
            "required": ["hosts"],
            "properties": {"hosts": {"type": "array", "items": {"type": "string"}}}
        },
        "api.BulkResponse": {
            "type": "object",
            "properties": {
                "job": {"type": "string"},
                "total": {"type": "integer"},
                "success": {"type": "integer"},
                "failed": {"type": "integer"},
                "results": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "host": {"type": "string"},
                            "dispatched": {"type": "boolean"},
                            "error": {"type": "string"}
                        }
                    }
                }
            }
        },
        "models.Host": {
            "type": "object",
            "properties": {
                "@context": {"type": "string"},
                "@type": {"type": "string"},
                "@id": {"type": "string"},
                "_rev": {"type": "string"},
                "name": {"type": "string"},
                "ipAddress": {"type": "string"},
                "location": {"type": "string"},
                "hostState": {
                    "type": "string",
                    "enum": ["undeployed", "unconfigured", "packages_installed", "managed", "monitored", "working", "removed"]
                },
                "dateModified": {"type": "string"}
            }
        },
        "storage.Statistics": {
            "type": "object",
            "properties": {
                "totalHosts": {"type": "integer"},
                "byState": {"type": "object", "additionalProperties": {"type": "integer"}},
                "byDatacenter": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "validation.ValidationResult": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "field": {"type": "string"},
                            "message": {"type": "string"},
                            "value": {}
                        }
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "hostjobs API",
	Description:      "Host lifecycle states and the jobs each state allows.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
