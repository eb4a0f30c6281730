// Package docs holds the OpenAPI document served at /swagger/index.html.
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
        "/check_out": {
            "post": {
                "tags": ["usage"],
                "summary": "Check equipment out to a student or faculty member",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CheckOutRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UsageResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Equipment, location or holder not found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Equipment already checked out or archived", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/check_in": {
            "post": {
                "tags": ["usage"],
                "summary": "Close an open usage record",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CheckInRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UsageResponse"}},
                    "404": {"description": "Usage record not found", "schema": {"$ref": "#/definitions/Error"}},
                    "409": {"description": "Already checked in", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/equipment/{equipment_id}/location": {
            "get": {
                "tags": ["usage"],
                "summary": "Where the equipment currently is",
                "parameters": [{"in": "path", "name": "equipment_id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK, checked_out is false when no open record exists", "schema": {"$ref": "#/definitions/LocationResponse"}},
                    "400": {"description": "Invalid equipment id", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/usage/checked_out": {
            "get": {
                "tags": ["usage"],
                "summary": "Open usage records, oldest checkout first",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/UsageResponse"}}}}
            }
        },
        "/usage": {
            "get": {
                "tags": ["usage"],
                "summary": "Usage history",
                "parameters": [
                    {"in": "query", "name": "equipment_id", "type": "integer"},
                    {"in": "query", "name": "holder_type", "type": "string", "enum": ["Student", "Faculty"]},
                    {"in": "query", "name": "holder_id", "type": "integer"},
                    {"in": "query", "name": "location_id", "type": "integer"},
                    {"in": "query", "name": "open", "type": "boolean"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"},
                    {"in": "query", "name": "order", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/usage/export": {
            "get": {
                "tags": ["usage"],
                "summary": "Usage history as CSV",
                "produces": ["text/csv"],
                "parameters": [{"in": "query", "name": "encoding", "type": "string", "enum": ["utf8", "sjis"]}],
                "responses": {"200": {"description": "CSV file"}}
            }
        },
        "/stats": {
            "get": {
                "tags": ["usage"],
                "summary": "Dashboard counts",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Stats"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange id and password for a bearer token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/Error"}}}
            }
        }
    },
    "definitions": {
        "CheckOutRequest": {
            "type": "object",
            "required": ["equipment_id", "holder_id", "holder_type", "location_id"],
            "properties": {
                "equipment_id": {"type": "integer"},
                "holder_id": {"type": "integer"},
                "holder_type": {"type": "string", "enum": ["Student", "Faculty"]},
                "location_id": {"type": "integer"},
                "checked_out_on": {"type": "string", "example": "2025-03-10"},
                "note": {"type": "string"}
            }
        },
        "CheckInRequest": {
            "type": "object",
            "required": ["usage_id"],
            "properties": {
                "usage_id": {"type": "integer"},
                "returned_on": {"type": "string", "example": "2025-03-12"}
            }
        },
        "UsageResponse": {
            "type": "object",
            "properties": {
                "usage_id": {"type": "integer"},
                "usage_ulid": {"type": "string"},
                "equipment_id": {"type": "integer"},
                "holder_id": {"type": "integer"},
                "holder_type": {"type": "string"},
                "location_id": {"type": "integer"},
                "checked_out_on": {"type": "string"},
                "returned_on": {"type": "string"},
                "open": {"type": "boolean"},
                "note": {"type": "string"}
            }
        },
        "LocationResponse": {
            "type": "object",
            "properties": {
                "checked_out": {"type": "boolean"},
                "message": {"type": "string"},
                "equipment_id": {"type": "integer"},
                "equipment_name": {"type": "string"},
                "location_name": {"type": "string"},
                "building": {"type": "string"},
                "room_no": {"type": "string"},
                "checked_out_on": {"type": "string"}
            }
        },
        "Stats": {
            "type": "object",
            "properties": {
                "total_students": {"type": "integer"},
                "total_faculty": {"type": "integer"},
                "total_equipment": {"type": "integer"},
                "total_locations": {"type": "integer"},
                "checked_out": {"type": "integer"},
                "total_usage": {"type": "integer"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Equipment Tracker API",
	Description:      "Check equipment out to students and faculty, check it back in, and see where it is.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
