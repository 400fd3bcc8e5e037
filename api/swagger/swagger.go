package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SIA API",
        "description": "Academic extract ingestion and curriculum reconciliation service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Operator login"},
        {"name": "Imports", "description": "ARGOS extract validation and batch import"},
        {"name": "Blueprints", "description": "Curriculum blueprint catalog"},
        {"name": "Students", "description": "Student history and classified curricula"},
        {"name": "Programs", "description": "Program-wide credit progress"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/imports/validate": {
            "post": {
                "tags": ["Imports"],
                "summary": "Validate an ARGOS extract",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Validation report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/imports": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import an ARGOS extract",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Import summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Extract refused with embedded report"}
                }
            }
        },
        "/imports/recent": {
            "get": {
                "tags": ["Imports"],
                "summary": "List recent imports",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blueprints": {
            "get": {
                "tags": ["Blueprints"],
                "summary": "List curricula",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Blueprints"],
                "summary": "Register a curriculum",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "formData", "type": "string", "required": true},
                    {"name": "name", "in": "formData", "type": "string", "required": true},
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid document"}
                }
            }
        },
        "/blueprints/simulate": {
            "post": {
                "tags": ["Blueprints"],
                "summary": "Validate a curriculum without storing it",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Validation outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/blueprints/{id}": {
            "get": {
                "tags": ["Blueprints"],
                "summary": "Get one curriculum",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown blueprint"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "programCode", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/curriculum": {
            "get": {
                "tags": ["Students"],
                "summary": "Classified curriculum of one student",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blueprintId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown student"}
                }
            }
        },
        "/students/{id}/curriculum/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export a classified curriculum sheet",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "blueprintId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        },
        "/students/{id}/history": {
            "get": {
                "tags": ["Students"],
                "summary": "Persisted enrollment history",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/programs/{code}/progress": {
            "get": {
                "tags": ["Programs"],
                "summary": "Program credit progress report",
                "parameters": [
                    {"name": "code", "in": "path", "type": "string", "required": true},
                    {"name": "minPercent", "in": "query", "type": "number"},
                    {"name": "blueprintId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown program"}
                }
            }
        },
        "/programs/{code}/progress/export": {
            "get": {
                "tags": ["Programs"],
                "summary": "Export a program progress report",
                "parameters": [
                    {"name": "code", "in": "path", "type": "string", "required": true},
                    {"name": "minPercent", "in": "query", "type": "number"},
                    {"name": "blueprintId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
