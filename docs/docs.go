// Package docs holds the OpenAPI document served at /swagger/*.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "DevEx Technologies",
            "email": "support@devex.tech"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/sign-up": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign up with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.SignUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "409": {"description": "User already exists", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/sign-in": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid password", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "User or account not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/sign-out": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Sign out",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/sign-in-with-oauth": {
            "post": {
                "tags": ["auth"],
                "summary": "Reconcile an OAuth sign-in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "in": "header", "name": "X-API-Key"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.OAuthSignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/httputil.Envelope"}},
                    "401": {"description": "Invalid API key", "schema": {"$ref": "#/definitions/httputil.Envelope"}}
                }
            }
        },
        "/create-order": {
            "post": {
                "tags": ["payments"],
                "summary": "Create a payment order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/payment.CreateOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Missing required fields or invalid amount", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "500": {"description": "Failed to create order", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/verify-payment": {
            "post": {
                "tags": ["payments"],
                "summary": "Verify a payment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/payment.VerifyPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Missing required fields or invalid signature", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "404": {"description": "Payment record not found", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}},
                    "409": {"description": "Payment already verified", "schema": {"$ref": "#/definitions/httputil.ErrorResponse"}}
                }
            }
        },
        "/my-purchase": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["payments"],
                "summary": "Latest purchase",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "No verified purchases found"}}
            }
        },
        "/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "User not found"}}
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get user",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "User not found"}}
            }
        },
        "/accounts/by-provider/{providerAccountId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Get account by provider account id",
                "parameters": [{"type": "string", "in": "path", "name": "providerAccountId", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Account not found"}}
            }
        },
        "/contact": {
            "post": {
                "tags": ["contact"],
                "summary": "Send a contact message",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/contact.Request"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "429": {"description": "Too many requests"}}
            }
        }
    },
    "definitions": {
        "auth.SignUpRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"},
                "contact": {"type": "string"},
                "organization": {"type": "string"},
                "address": {"type": "string"},
                "terms": {"type": "boolean"}
            }
        },
        "auth.SignInRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "auth.OAuthSignInRequest": {
            "type": "object",
            "properties": {
                "provider": {"type": "string"},
                "providerAccountId": {"type": "string"},
                "user": {
                    "type": "object",
                    "properties": {
                        "name": {"type": "string"},
                        "email": {"type": "string"},
                        "image": {"type": "string"},
                        "username": {"type": "string"}
                    }
                }
            }
        },
        "payment.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "currency": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "contact": {"type": "string"},
                "plan": {"type": "string"}
            }
        },
        "payment.VerifyPaymentRequest": {
            "type": "object",
            "properties": {
                "razorpay_payment_id": {"type": "string"},
                "razorpay_order_id": {"type": "string"},
                "razorpay_signature": {"type": "string"}
            }
        },
        "contact.Request": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "httputil.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "details": {}
            }
        },
        "httputil.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {
                    "type": "object",
                    "properties": {
                        "message": {"type": "string"},
                        "code": {"type": "string"},
                        "details": {}
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DevEx Technologies API",
	Description:      "Sign-up, sign-in, OAuth reconciliation and Razorpay payments for the DevEx Technologies site.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
