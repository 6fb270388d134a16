package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Acharyas & Gurus API",
        "description": "Community platform for spiritual teachers and their content",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Signup, verification and login"},
        {"name": "Content", "description": "Public reading surface"},
        {"name": "Teachers", "description": "Public teacher directory"},
        {"name": "Authoring", "description": "Teacher content workflow"},
        {"name": "Profile", "description": "Own account profile"},
        {"name": "Admin", "description": "Dashboard and moderation"}
    ],
    "paths": {
        "/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create a user account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/auth/register-teacher": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a teacher account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRegistrationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/auth/verify-email": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Verify an email address",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyEmailRequest"}}
                ],
                "responses": {
                    "200": {"description": "Verified"},
                    "400": {"description": "Invalid or expired code"},
                    "429": {"description": "Too many attempts"}
                }
            }
        },
        "/auth/resend-verification": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Resend a verification code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResendVerificationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Code sent"},
                    "429": {"description": "Too many attempts"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Email not verified"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/content": {
            "get": {
                "tags": ["Content"],
                "summary": "Browse published content",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "featured", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/{id}": {
            "get": {
                "tags": ["Content"],
                "summary": "Read a published item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/content/{id}/like": {
            "post": {
                "tags": ["Content"],
                "summary": "Like a published item",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Browse teachers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "View a teacher profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/teacher/content": {
            "get": {
                "tags": ["Authoring"],
                "summary": "List own content",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Authoring"],
                "summary": "Submit new content",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateContentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/teacher/stats": {
            "get": {
                "tags": ["Authoring"],
                "summary": "Authoring counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Get own profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Profile"],
                "summary": "Update own profile",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProfileUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/image": {
            "post": {
                "tags": ["Profile"],
                "summary": "Upload a profile picture",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "image", "in": "formData", "required": true, "type": "file"},
                    {"name": "x", "in": "formData", "type": "integer"},
                    {"name": "y", "in": "formData", "type": "integer"},
                    {"name": "width", "in": "formData", "type": "integer"},
                    {"name": "height", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Platform statistics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/admin/teachers": {
            "get": {
                "tags": ["Admin"],
                "summary": "List teacher accounts",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/teachers/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export the teacher roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format"}
                }
            }
        },
        "/admin/teachers/{id}": {
            "patch": {
                "tags": ["Admin"],
                "summary": "Moderate a teacher account",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManageTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/admin/content": {
            "get": {
                "tags": ["Admin"],
                "summary": "List content across statuses",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "featured", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/content/{id}": {
            "patch": {
                "tags": ["Admin"],
                "summary": "Moderate a content item",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ModerateContentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            },
            "required": ["name", "email", "password"]
        },
        "TeacherRegistrationRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "title": {"type": "string"},
                "bio": {"type": "string"},
                "specialties": {"type": "array", "items": {"type": "string"}},
                "yearsOfExperience": {"type": "integer"},
                "contactInfo": {"type": "object"},
                "socialMedia": {"type": "object"}
            },
            "required": ["name", "email", "password", "title", "bio", "specialties"]
        },
        "VerifyEmailRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "string", "minLength": 6, "maxLength": 6}
            },
            "required": ["email", "otp"]
        },
        "ResendVerificationRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"}
            },
            "required": ["email"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateContentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "excerpt": {"type": "string"},
                "content": {"type": "string"},
                "category": {"type": "string", "enum": ["meditation", "philosophy", "daily-wisdom", "scripture", "practice"]},
                "tags": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["title", "excerpt", "content", "category"]
        },
        "ModerateContentRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["hide", "unhide", "feature", "unfeature", "delete"]},
                "reason": {"type": "string"}
            },
            "required": ["action"]
        },
        "ManageTeacherRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["delete"]}
            },
            "required": ["action"]
        },
        "ProfileUpdateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "bio": {"type": "string"},
                "title": {"type": "string"},
                "specialties": {"type": "array", "items": {"type": "string"}},
                "yearsOfExperience": {"type": "integer"},
                "contactInfo": {"type": "object"},
                "socialMedia": {"type": "object"}
            },
            "required": ["name"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "totalItems": {"type": "integer"},
                "itemsPerPage": {"type": "integer"}
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
                "message": {"type": "string"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
