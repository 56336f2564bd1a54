package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Examplanner API",
        "description": "Exam seat allocation and invigilator assignment",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Students", "description": "Candidates and their eligibility"},
        {"name": "Classrooms", "description": "Exam halls and bench layouts"},
        {"name": "ExamSlots", "description": "Scheduled papers"},
        {"name": "Invigilators", "description": "Invigilator roster and duty history"},
        {"name": "Allotments", "description": "Seat plan preview, commit and export"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "course", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "debarred", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Roll number already used"}}
            }
        },
        "/students/{id}": {
            "get": {"tags": ["Students"], "summary": "Get student", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["Students"], "summary": "Update student", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Students"], "summary": "Delete student", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/classrooms": {
            "get": {"tags": ["Classrooms"], "summary": "List classrooms", "parameters": [{"name": "search", "in": "query", "type": "string"}, {"name": "building", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Classrooms"], "summary": "Create classroom", "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassroomRequest"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/classrooms/{id}": {
            "get": {"tags": ["Classrooms"], "summary": "Get classroom", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Classrooms"], "summary": "Update classroom", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassroomRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Classrooms"], "summary": "Delete classroom", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/exam-slots": {
            "get": {"tags": ["ExamSlots"], "summary": "List exam slots", "parameters": [{"name": "date_from", "in": "query", "type": "string"}, {"name": "date_to", "in": "query", "type": "string"}, {"name": "course", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["ExamSlots"], "summary": "Create exam slot", "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamSlotRequest"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/exam-slots/{id}": {
            "get": {"tags": ["ExamSlots"], "summary": "Get exam slot", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["ExamSlots"], "summary": "Update exam slot", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExamSlotRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["ExamSlots"], "summary": "Delete exam slot", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/invigilators": {
            "get": {"tags": ["Invigilators"], "summary": "List invigilators", "parameters": [{"name": "available", "in": "query", "type": "boolean"}, {"name": "sort", "in": "query", "type": "string", "enum": ["name", "department", "created_at", "duty_count"]}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Invigilators"], "summary": "Create invigilator", "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InvigilatorRequest"}}], "responses": {"201": {"description": "Created"}}}
        },
        "/invigilators/{id}": {
            "get": {"tags": ["Invigilators"], "summary": "Get invigilator with duty history", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Invigilators"], "summary": "Update invigilator", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InvigilatorRequest"}}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Invigilators"], "summary": "Delete invigilator", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/allotments": {
            "get": {"tags": ["Allotments"], "summary": "List committed allotments", "parameters": [{"name": "date_from", "in": "query", "type": "string"}, {"name": "date_to", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/allotments/preview": {
            "post": {
                "tags": ["Allotments"],
                "summary": "Preview seat and invigilator allotment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewAllotmentRequest"}}],
                "responses": {"200": {"description": "Proposal"}, "404": {"description": "Unknown exams"}, "422": {"description": "Input inconsistency"}}
            }
        },
        "/allotments/commit": {
            "post": {
                "tags": ["Allotments"],
                "summary": "Commit a previewed allotment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommitAllotmentRequest"}}],
                "responses": {"201": {"description": "Committed"}, "410": {"description": "Proposal expired"}}
            }
        },
        "/allotments/{id}": {
            "get": {"tags": ["Allotments"], "summary": "Get allotment with seats and duties", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Allotments"], "summary": "Withdraw allotment", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/allotments/{id}/export": {
            "post": {"tags": ["Allotments"], "summary": "Export seat chart", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"format": {"type": "string", "enum": ["csv", "pdf"]}}}}], "responses": {"201": {"description": "Signed download link"}}}
        },
        "/allotments/export/{token}": {
            "get": {"tags": ["Allotments"], "summary": "Download exported seat chart", "produces": ["text/csv", "application/pdf"], "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "File"}, "410": {"description": "Link expired"}}}
        }
    },
    "definitions": {
        "SlotUnavailability": {
            "type": "object",
            "properties": {"slot_id": {"type": "string"}, "reason": {"type": "string"}}
        },
        "StudentRequest": {
            "type": "object",
            "required": ["roll_number", "name", "course", "semester"],
            "properties": {
                "roll_number": {"type": "string"},
                "name": {"type": "string"},
                "department": {"type": "string"},
                "course": {"type": "string"},
                "semester": {"type": "integer"},
                "group": {"type": "string"},
                "is_debarred": {"type": "boolean"},
                "eligible_subjects": {"type": "array", "items": {"type": "string"}},
                "ineligibilities": {"type": "array", "items": {"type": "object", "properties": {"subject_code": {"type": "string"}, "reason": {"type": "string"}}}},
                "unavailability": {"type": "array", "items": {"$ref": "#/definitions/SlotUnavailability"}}
            }
        },
        "ClassroomRequest": {
            "type": "object",
            "required": ["name", "rows", "columns"],
            "properties": {
                "name": {"type": "string"},
                "building": {"type": "string"},
                "rows": {"type": "integer"},
                "columns": {"type": "integer"},
                "bench_capacity": {"type": "integer"},
                "bench_capacities": {"type": "array", "items": {"type": "integer", "minimum": 1, "maximum": 10}},
                "unavailability": {"type": "array", "items": {"$ref": "#/definitions/SlotUnavailability"}}
            }
        },
        "ExamSlotRequest": {
            "type": "object",
            "required": ["subject_name", "subject_code", "course", "semester", "date", "time"],
            "properties": {
                "subject_name": {"type": "string"},
                "subject_code": {"type": "string"},
                "department": {"type": "string"},
                "course": {"type": "string"},
                "semester": {"type": "integer"},
                "group": {"type": "string"},
                "date": {"type": "string", "example": "2024-05-10"},
                "time": {"type": "string", "example": "09:00"},
                "duration_minutes": {"type": "integer"}
            }
        },
        "InvigilatorRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "department": {"type": "string"},
                "is_available": {"type": "boolean"},
                "unavailability": {"type": "array", "items": {"$ref": "#/definitions/SlotUnavailability"}}
            }
        },
        "PreviewAllotmentRequest": {
            "type": "object",
            "properties": {
                "exam_ids": {"type": "array", "items": {"type": "string"}},
                "date_from": {"type": "string"},
                "date_to": {"type": "string"},
                "sort_by_roll": {"type": "boolean"},
                "headcount_basis": {"type": "string", "enum": ["seated", "capacity"]}
            }
        },
        "CommitAllotmentRequest": {
            "type": "object",
            "required": ["proposal_id"],
            "properties": {"proposal_id": {"type": "string"}}
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
