// Package docs registers the OpenAPI description served under /swagger.
// Keep it in step with the handler annotations.
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
        "/api/admin/payments/{id}/refund": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Refund part or all of the remaining balance of a captured payment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Refund payment",
                "parameters": [
                    {"type": "integer", "description": "Payment ID", "name": "id", "in": "path", "required": true},
                    {"description": "Refund amount", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.RefundRequest"}}
                ],
                "responses": {
                    "200": {"description": "Refund recorded", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Payment not refundable", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Provider rejected the refund", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/admin/payments/orders/{order_id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get payment by order",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "order_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Payment", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/payments/barcode": {
            "post": {
                "description": "Charge the buyer's payment code scanned at the counter",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Capture barcode payment",
                "parameters": [
                    {"description": "Order, auth code and amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CaptureBarcodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Payment captured", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Order paid by qr code", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Provider rejected the charge", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/payments/orders/{order_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Get payment by order",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "order_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Payment", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/api/payments/qrcode": {
            "post": {
                "description": "Create (or reuse) a face-to-face precreate charge and return the QR payload",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Request QR code",
                "parameters": [
                    {"description": "Order and amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RequestQRCodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "QR code ready", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Order conflict", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Provider rejected the charge", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/payments/alipay/notify": {
            "post": {
                "description": "Receives trade status notifications signed by Alipay",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/plain"],
                "tags": ["payments"],
                "summary": "Alipay notification",
                "responses": {
                    "200": {"description": "success or fail", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CaptureBarcodeRequest": {
            "type": "object",
            "required": ["amount", "auth_code", "order_id"],
            "properties": {
                "amount": {"type": "string", "example": "100.00"},
                "auth_code": {"type": "string", "maxLength": 32, "example": "287951669321423710"},
                "currency": {"type": "string"},
                "order_id": {"type": "string", "maxLength": 64}
            }
        },
        "dto.RefundRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "40.00"}
            }
        },
        "dto.RequestQRCodeRequest": {
            "type": "object",
            "required": ["amount", "order_id"],
            "properties": {
                "amount": {"type": "string", "example": "100.00"},
                "currency": {"type": "string", "example": "CNY"},
                "order_id": {"type": "string", "maxLength": 64, "example": "ORD-20240301-0001"}
            }
        },
        "utils.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/utils.ErrorInfo"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "utils.ErrorInfo": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "message": {"type": "string"},
                "type": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
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
	Title:            "f2fpay API",
	Description:      "Alipay face-to-face payment reconciliation service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
