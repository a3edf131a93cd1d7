// Package docs 注册 idgen HTTP 接口的 Swagger 文档，由 gin-swagger 在 /swagger/ 下提供
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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/healthResponse"}}
                }
            }
        },
        "/ids": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "生成ID",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/idResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/ids/batch": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "批量生成ID",
                "parameters": [
                    {"type": "integer", "description": "数量 (1-100000)", "name": "count", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/idsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/ids/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ids"],
                "summary": "解析ID",
                "parameters": [
                    {"type": "string", "description": "ID（十进制、0x 或 0b）", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/idInfoResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "生成器指标",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "worker_id": {"type": "integer"},
                "datacenter_id": {"type": "integer"}
            }
        },
        "idResponse": {
            "type": "object",
            "properties": {"id": {"type": "string", "example": "1234567890123456789"}}
        },
        "idsResponse": {
            "type": "object",
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
        },
        "idInfoResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "timestamp": {"type": "integer"},
                "time": {"type": "string"},
                "datacenter_id": {"type": "integer"},
                "worker_id": {"type": "integer"},
                "sequence": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "idgen API",
	Description:      "Snowflake 64位ID生成与解析服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
