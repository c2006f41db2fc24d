// Package docs holds the OpenAPI description served under /swagger.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/docs": {
            "get": {
                "summary": "List owned and shared documents",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/DocumentView"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorPayload"}}
                }
            }
        },
        "/docs/{shareId}": {
            "post": {
                "summary": "Delete or rename an owned document",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "shareId", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DocumentAction"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorPayload"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Status"}}
                }
            }
        },
        "/share/users": {
            "get": {
                "summary": "List known users for the share picker",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/User"}}}
                }
            }
        },
        "/share/{shareId}": {
            "get": {
                "summary": "Issue a time-limited download link",
                "produces": ["application/json"],
                "parameters": [{"name": "shareId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DownloadLink"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Message"}}
                }
            },
            "post": {
                "summary": "Replace the recipient list of an owned document",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "shareId", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShareRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ShareResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Message"}}
                }
            }
        },
        "/uploads": {
            "post": {
                "summary": "Issue a presigned upload link into the caller's private area",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UploadLink"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorPayload"}}
                }
            }
        },
        "/audit": {
            "get": {
                "summary": "List the audit trail (admin)",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/AuditEntry"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Status"}}
                }
            }
        },
        "/audit/export": {
            "get": {
                "summary": "Export the audit trail as XLSX (admin)",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Status"}}
                }
            }
        },
        "/events/s3": {
            "post": {
                "summary": "S3 upload-completion webhook",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Processed"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorPayload"}}
                }
            }
        },
        "/health": {
            "get": {
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/healthz": {
            "get": {"summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "Person": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "surname": {"type": "string"}}
        },
        "User": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "surname": {"type": "string"}, "key": {"type": "string"}}
        },
        "DocumentView": {
            "type": "object",
            "properties": {
                "share_id": {"type": "string"},
                "uploaded_at": {"type": "string", "format": "date-time"},
                "expires_at": {"type": "string", "format": "date-time"},
                "display_name": {"type": "string"},
                "size": {"type": "integer"},
                "owner": {"$ref": "#/definitions/Person"},
                "shared_with_others": {"type": "boolean"},
                "shared_with_you": {"type": "boolean"},
                "people": {"type": "array", "items": {"$ref": "#/definitions/Person"}}
            }
        },
        "DocumentAction": {
            "type": "object",
            "properties": {"action": {"type": "string", "enum": ["delete", "rename"]}, "new_name": {"type": "string"}}
        },
        "ShareRequest": {
            "type": "object",
            "properties": {"users": {"type": "array", "items": {"type": "string"}}}
        },
        "ShareResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "forbidden": {"type": "array", "items": {"type": "string"}}}
        },
        "UploadRequest": {
            "type": "object",
            "properties": {"filename": {"type": "string"}}
        },
        "UploadLink": {
            "type": "object",
            "properties": {"upload_link": {"type": "string"}, "key": {"type": "string"}, "expires_in": {"type": "integer"}}
        },
        "DownloadLink": {
            "type": "object",
            "properties": {"download_link": {"type": "string"}}
        },
        "AuditEntry": {
            "type": "object",
            "properties": {
                "actor": {"$ref": "#/definitions/Person"},
                "share_id": {"type": "string"},
                "storage_key": {"type": "string"},
                "display_name": {"type": "string"},
                "action": {"type": "string"},
                "action_time": {"type": "number"},
                "display_time": {"type": "string"}
            }
        },
        "Message": {"type": "object", "properties": {"message": {"type": "string"}}},
        "Status": {"type": "object", "properties": {"status": {"type": "string"}}},
        "Processed": {"type": "object", "properties": {"processed": {"type": "integer"}}},
        "ErrorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Document Transfer API",
	Description:      "Document sharing with expiry, download links and an audit trail.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
