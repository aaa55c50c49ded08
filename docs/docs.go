// Package docs registers the OpenAPI document served under /swagger.
// It follows the layout produced by swag init.
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
        "/api/tournaments": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List async tournaments",
                "parameters": [
                    {"type": "string", "description": "true to list only active tournaments", "name": "active", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object"}}
                }
            }
        },
        "/api/tournaments/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Get an async tournament",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/api/tournaments/{id}/races": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Every race is returned with its tournament, permalink, pool, runner and reviewer.",
                "produces": ["application/json"],
                "tags": ["races"],
                "summary": "List races of a tournament",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Runner Discord ID", "name": "discord_user_id", "in": "query"},
                    {"type": "integer", "description": "Permalink ID", "name": "permalink_id", "in": "query"},
                    {"type": "integer", "description": "Pool ID", "name": "pool_id", "in": "query"},
                    {"type": "string", "description": "Pool name", "name": "pool_name", "in": "query"},
                    {"type": "string", "description": "Race status", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/api/tournaments/{id}/pools": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["pools"],
                "summary": "List permalink pools of a tournament",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/api/tournaments/{id}/pools/{pool_id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["pools"],
                "summary": "Get a permalink pool",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Pool ID", "name": "pool_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/api/tournaments/{id}/permalinks": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["permalinks"],
                "summary": "List permalinks of a tournament",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Permalink URL", "name": "permalink", "in": "query"},
                    {"type": "integer", "description": "Pool ID", "name": "pool_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/api/tournaments/{id}/permalinks/{permalink_id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["permalinks"],
                "summary": "Get a permalink",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Permalink ID", "name": "permalink_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/api/tournaments/{id}/whitelist": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["whitelist"],
                "summary": "List whitelisted runners of a tournament",
                "parameters": [
                    {"type": "integer", "description": "Tournament ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness and database reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object"}}
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Bearer <key_id>.<secret>",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Async Tournament API",
	Description:      "Read-only access to async tournaments, their pools, permalinks, races and whitelist.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
