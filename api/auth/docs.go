// Package auth holds the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g internal/auth/http/router.go -o api/auth
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version, checks", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}},
                    "503": {"description": "service not ready", "schema": {"$ref": "#/definitions/authsdk.HealthResponse"}}
                }
            }
        },
        "/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authsdk.AuthResponse"}},
                    "409": {"description": "email already registered", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "422": {"description": "validation_failed", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.AuthResponse"}},
                    "401": {"description": "invalid_credentials, user_inactive", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.MessageResponse"}}
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TokenResponse"}},
                    "401": {"description": "token_refresh_failed, token_revoked", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/auth/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.ProfileResponse"}}
                }
            }
        },
        "/v1/teams": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "List my teams",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TeamListResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Create team",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.CreateTeamRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/authsdk.TeamResponse"}},
                    "409": {"description": "slug taken", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/teams/join": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Join team",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.JoinTeamRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TeamResponse"}},
                    "404": {"description": "invitation_not_found", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "410": {"description": "invitation_expired, invitation_already_used", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/teams/{team}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Show team",
                "parameters": [{"type": "string", "name": "team", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TeamResponse"}},
                    "403": {"description": "not_team_member", "schema": {"$ref": "#/definitions/authsdk.APIError"}},
                    "404": {"description": "team_not_found", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Update team",
                "parameters": [
                    {"type": "string", "name": "team", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.UpdateTeamRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.TeamResponse"}},
                    "403": {"description": "not_team_admin", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Archive team",
                "parameters": [{"type": "string", "name": "team", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.MessageResponse"}},
                    "403": {"description": "not_team_owner", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/teams/{team}/members": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "List team members",
                "parameters": [{"type": "string", "name": "team", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.MembersResponse"}}
                }
            }
        },
        "/v1/teams/{team}/invite": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Invitations"],
                "summary": "Invite to team",
                "parameters": [
                    {"type": "string", "name": "team", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/authsdk.InviteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.InviteResponse"}},
                    "409": {"description": "already_team_member", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        },
        "/v1/teams/{team}/leave": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "Leave team",
                "parameters": [{"type": "string", "name": "team", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/authsdk.MessageResponse"}},
                    "403": {"description": "owner_cannot_leave_team", "schema": {"$ref": "#/definitions/authsdk.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "authsdk.APIError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "timestamp": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "authsdk.RegisterRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "email", "password", "password_confirmation"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "password_confirmation": {"type": "string"}
            }
        },
        "authsdk.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "authsdk.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "role": {"type": "string"},
                "last_login_at": {"type": "string"}
            }
        },
        "authsdk.TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "authsdk.AuthResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user": {"$ref": "#/definitions/authsdk.User"},
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "authsdk.ProfileResponse": {
            "type": "object",
            "properties": {
                "user": {"$ref": "#/definitions/authsdk.User"}
            }
        },
        "authsdk.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "authsdk.Team": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "owner_id": {"type": "string"},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "authsdk.TeamResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"$ref": "#/definitions/authsdk.Team"}
            }
        },
        "authsdk.TeamSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"},
                "owner_id": {"type": "string"},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "role": {"type": "string"},
                "members_count": {"type": "integer"}
            }
        },
        "authsdk.TeamListResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/authsdk.TeamSummary"}}
            }
        },
        "authsdk.CreateTeamRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "slug": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "authsdk.UpdateTeamRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "authsdk.Member": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "joined_at": {"type": "string"}
            }
        },
        "authsdk.MembersResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/authsdk.Member"}}
            }
        },
        "authsdk.InviteRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"}
            }
        },
        "authsdk.InviteResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "invitation_token": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "authsdk.JoinTeamRequest": {
            "type": "object",
            "required": ["token"],
            "properties": {
                "token": {"type": "string"}
            }
        },
        "authsdk.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "revocation": {"type": "string"}
            }
        },
        "authsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"$ref": "#/definitions/authsdk.HealthChecks"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Slack-like Identity Service API",
	Description:      "Accounts, teams, memberships and invitations for the chat backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
