package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AcadPlan Timetable API",
        "description": "Slot-allocation and conflict-resolution service for university timetables",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedules", "description": "Schedule generation and version lifecycle"},
        {"name": "Conflicts", "description": "Cross-level conflict reporting"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/schedules/generate/{level}": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate a schedule for one level",
                "parameters": [
                    {"name": "level", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Missing courses, students or rooms", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/regenerate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Regenerate every level's schedule in the background",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing to regenerate", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Conflict report across every level's current schedule",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{level}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get the current schedule for a level",
                "parameters": [
                    {"name": "level", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No schedule generated yet", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{level}/versions": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List stored schedule versions for a level",
                "parameters": [
                    {"name": "level", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/{level}/export/csv": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Export the level's current schedule as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "level", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/schedules/{level}/export/pdf": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Export the level's current schedule as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "level", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/schedules/versions/{id}": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Get one stored schedule version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedules"],
                "summary": "Manually edit a stored schedule version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete a stored schedule version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Section": {
            "type": "object",
            "properties": {
                "course_code": {"type": "string"},
                "group": {"type": "string"},
                "day": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "room": {"type": "string"},
                "student_count": {"type": "integer"},
                "capacity": {"type": "integer"}
            }
        },
        "GroupSchedule": {
            "type": "object",
            "properties": {
                "student_count": {"type": "integer"},
                "sections": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Section"}
                }
            }
        },
        "ScheduleVersion": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "level": {"type": "integer"},
                "groups": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/GroupSchedule"}
                },
                "total_sections": {"type": "integer"},
                "conflicts": {"type": "integer"},
                "efficiency": {"type": "integer"},
                "generated_at": {"type": "string", "format": "date-time"}
            }
        },
        "UpdateScheduleRequest": {
            "type": "object",
            "properties": {
                "groups": {
                    "type": "object",
                    "additionalProperties": {"$ref": "#/definitions/GroupSchedule"}
                },
                "prompt": {"type": "string"}
            },
            "required": ["groups"]
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
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
