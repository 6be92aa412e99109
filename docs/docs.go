// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/public/orders": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Place an order",
                "parameters": [
                    {"description": "Order", "name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PlaceOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/public/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Track an order",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/public/orders/{id}/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["public"],
                "summary": "Stream order status changes (SSE)",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/public/restaurants/{id}/menu": {
            "get": {
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Restaurant menu",
                "parameters": [{"type": "string", "description": "Restaurant ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Menu"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a restaurant and its owner",
                "parameters": [{"description": "Registration", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.TokenResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [{"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "parameters": [
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "string", "description": "Created at or after", "name": "from", "in": "query"},
                    {"type": "string", "description": "Created before", "name": "to", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Move an order through its lifecycle",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "Target status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/orders/stream": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["orders"],
                "summary": "Stream restaurant order events (SSE)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/orders/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Daily order summary",
                "parameters": [{"type": "string", "description": "Day (UTC), defaults to today", "name": "date", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DailySummary"}}}
            }
        },
        "/orders/{id}/receipt.pdf": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "tags": ["orders"],
                "summary": "Printable order receipt",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/{date}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Daily report download link",
                "parameters": [{"type": "string", "description": "Day (YYYY-MM-DD)", "name": "date", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "handlers.StatusRequest": {
            "type": "object",
            "properties": {"status": {"type": "string", "enum": ["pending", "preparing", "ready", "delivered", "cancelled"]}}
        },
        "models.LineRequest": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "customizations": {"type": "object", "additionalProperties": {}},
                "note": {"type": "string"}
            }
        },
        "models.PlaceOrderRequest": {
            "type": "object",
            "properties": {
                "restaurant_id": {"type": "string"},
                "customer_name": {"type": "string"},
                "customer_phone": {"type": "string"},
                "delivery_mode": {"type": "string", "enum": ["table", "takeaway", "delivery"]},
                "table_number": {"type": "integer"},
                "delivery_address": {"type": "string"},
                "notes": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/models.LineRequest"}}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "restaurant_id": {"type": "string"},
                "category_id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string"},
                "available": {"type": "boolean"},
                "preparation_time": {"type": "integer"}
            }
        },
        "models.OrderLine": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "order_id": {"type": "string"},
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "unit_price": {"type": "string"},
                "subtotal": {"type": "string"},
                "customizations": {"type": "object", "additionalProperties": {}},
                "note": {"type": "string"},
                "product": {"$ref": "#/definitions/models.Product"}
            }
        },
        "models.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "restaurant_id": {"type": "string"},
                "number": {"type": "string", "example": "#001"},
                "customer_name": {"type": "string"},
                "customer_phone": {"type": "string"},
                "delivery_mode": {"type": "string"},
                "table_number": {"type": "integer"},
                "delivery_address": {"type": "string"},
                "status": {"type": "string"},
                "total": {"type": "string"},
                "notes": {"type": "string"},
                "estimated_preparation_minutes": {"type": "integer"},
                "estimated_delivery_time": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/models.OrderLine"}}
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "position": {"type": "integer"},
                "products": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}}
            }
        },
        "models.Restaurant": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "is_open": {"type": "boolean"}
            }
        },
        "models.Menu": {
            "type": "object",
            "properties": {
                "restaurant": {"$ref": "#/definitions/models.Restaurant"},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}}
            }
        },
        "models.DailySummary": {
            "type": "object",
            "properties": {
                "restaurant_id": {"type": "string"},
                "date": {"type": "string"},
                "orders": {"type": "integer"},
                "revenue": {"type": "string"},
                "by_status": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "models.RegisterRequest": {
            "type": "object",
            "properties": {
                "restaurant_name": {"type": "string"},
                "slug": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "owner_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user_id": {"type": "string"},
                "restaurant_id": {"type": "string"},
                "role": {"type": "string"},
                "issued_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "mesa API",
	Description:      "Multi-tenant restaurant ordering backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
