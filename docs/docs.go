// Package docs 接口文档，由 swag init -g cmd/main.go 维护
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
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["用户"],
                "summary": "登录",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "用户名或密码错误"}}
            }
        },
        "/orders": {
            "post": {
                "tags": ["订单"],
                "summary": "扫码下单",
                "parameters": [
                    {"in": "header", "name": "X-Client-Token", "type": "string", "description": "点餐页设备标识，用于防重复提交"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.OrderResponse"}},
                    "400": {"description": "参数错误"},
                    "404": {"description": "餐桌不存在"},
                    "409": {"description": "菜品不可售"},
                    "429": {"description": "提交过于频繁"}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "tags": ["订单"],
                "summary": "订单详情",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.OrderResponse"}}, "404": {"description": "订单不存在"}}
            }
        },
        "/orders/{id}/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["订单"],
                "summary": "订单状态流水",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "无权限"}}
            }
        },
        "/orders/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["订单"],
                "summary": "取消订单内有权处理的订单项",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "无权限"}, "409": {"description": "订单已完结"}}
            }
        },
        "/order-items/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["订单"],
                "summary": "订单项状态变更",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateItemStatusRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "无权限"}, "409": {"description": "状态流转不合法"}}
            }
        },
        "/foodcourts/{id}/order-items": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["档口"],
                "summary": "档口订单项看板",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "query", "name": "status", "type": "string"},
                    {"in": "query", "name": "limit", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/foodcourts/{id}/operating-status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["档口"],
                "summary": "开关档",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "档口已停用"}}
            }
        },
        "/permission-templates/{id}/apply": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["授权"],
                "summary": "模板批量下发",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ApplyTemplateRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BatchOperationResponse"}}, "429": {"description": "下发过于频繁"}}
            }
        }
    },
    "definitions": {
        "dto.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "dto.OrderLineRequest": {
            "type": "object",
            "properties": {
                "menu_item_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "special_instructions": {"type": "string"}
            }
        },
        "dto.CreateOrderRequest": {
            "type": "object",
            "required": ["table_id"],
            "properties": {
                "table_id": {"type": "string"},
                "customer_name": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.OrderLineRequest"}}
            }
        },
        "dto.OrderItemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "foodcourt_id": {"type": "string"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "unit_price": {"type": "string"},
                "subtotal": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "dto.OrderResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "table_id": {"type": "string"},
                "customer_name": {"type": "string"},
                "total_amount": {"type": "string"},
                "status": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/dto.OrderItemResponse"}}
            }
        },
        "dto.UpdateItemStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["pending", "preparing", "ready", "delivered", "canceled"]}}
        },
        "dto.ApplyTemplateRequest": {
            "type": "object",
            "required": ["owner_ids"],
            "properties": {"owner_ids": {"type": "array", "items": {"type": "string"}}}
        },
        "dto.BatchOperationResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "integer"},
                "failed": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "美食广场点餐 API",
	Description:      "扫码点餐、档口订单处理与权限管理",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
