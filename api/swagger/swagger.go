package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Optimizer API",
        "description": "Genetic-algorithm timetable generation for departments, batches, faculty and rooms",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Optimizations", "description": "Background timetable searches and timetable scoring"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/timetables/optimizations": {
            "post": {
                "tags": ["Optimizations"],
                "summary": "Queue a timetable optimization",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OptimizeTimetableRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No timetable can be built from the input", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Queue unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/optimizations/{id}": {
            "get": {
                "tags": ["Optimizations"],
                "summary": "Optimization progress",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/optimizations/{id}/results": {
            "get": {
                "tags": ["Optimizations"],
                "summary": "Ranked results of a finished optimization",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Job has not finished", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/optimizations/{id}/results/{rank}/export": {
            "get": {
                "tags": ["Optimizations"],
                "summary": "Download a ranked result as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "rank", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "CSV timetable", "schema": {"type": "file"}},
                    "404": {"description": "Unknown job or rank", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Job has not finished", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/optimizations/{id}/cancel": {
            "post": {
                "tags": ["Optimizations"],
                "summary": "Cancel a queued or running optimization",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Job already settled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/evaluate": {
            "post": {
                "tags": ["Optimizations"],
                "summary": "Score an existing timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EvaluateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or unknown references", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Aggregated request, cache and job counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Period": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "09:50"}
            }
        },
        "AcademicConfig": {
            "type": "object",
            "properties": {
                "periods": {"type": "array", "items": {"$ref": "#/definitions/Period"}},
                "lunchPeriod": {"$ref": "#/definitions/Period"}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "weeklyHours": {"type": "integer"}
            }
        },
        "Semester": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "number": {"type": "integer"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/Course"}}
            }
        },
        "Regulation": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "semesters": {"type": "array", "items": {"$ref": "#/definitions/Semester"}}
            }
        },
        "Batch": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "regulationId": {"type": "string"},
                "studentCount": {"type": "integer"}
            }
        },
        "Faculty": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "eligibleCourseIds": {"type": "array", "items": {"type": "string"}},
                "maxWeeklyLoad": {"type": "integer"}
            }
        },
        "Department": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "regulations": {"type": "array", "items": {"$ref": "#/definitions/Regulation"}},
                "batches": {"type": "array", "items": {"$ref": "#/definitions/Batch"}},
                "faculty": {"type": "array", "items": {"$ref": "#/definitions/Faculty"}}
            }
        },
        "Room": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "capacity": {"type": "integer"},
                "type": {"type": "string"}
            }
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "courseId": {"type": "string"},
                "batchId": {"type": "string"},
                "departmentId": {"type": "string"},
                "day": {"type": "string", "example": "Monday"},
                "slot": {"type": "string", "example": "09:00-09:50"},
                "facultyId": {"type": "string"},
                "roomId": {"type": "string"}
            }
        },
        "ParameterOverrides": {
            "type": "object",
            "properties": {
                "populationSize": {"type": "integer"},
                "generations": {"type": "integer"},
                "runs": {"type": "integer"},
                "eliteCount": {"type": "integer"},
                "tournamentSize": {"type": "integer"},
                "preferredClusterSize": {"type": "integer"},
                "maxContinuousClasses": {"type": "integer"},
                "resultLimit": {"type": "integer"},
                "weights": {
                    "type": "object",
                    "properties": {
                        "hardConflict": {"type": "number"},
                        "continuous": {"type": "number"},
                        "clustering": {"type": "number"},
                        "distribution": {"type": "number"},
                        "gap": {"type": "number"}
                    }
                }
            }
        },
        "OptimizeTimetableRequest": {
            "type": "object",
            "required": ["semesterNumber", "departments"],
            "properties": {
                "name": {"type": "string"},
                "semesterNumber": {"type": "integer"},
                "departments": {"type": "array", "items": {"$ref": "#/definitions/Department"}},
                "rooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}},
                "academic": {"$ref": "#/definitions/AcademicConfig"},
                "seed": {"type": "integer"},
                "parameters": {"$ref": "#/definitions/ParameterOverrides"}
            }
        },
        "EvaluateTimetableRequest": {
            "type": "object",
            "required": ["departments", "assignments"],
            "properties": {
                "departments": {"type": "array", "items": {"$ref": "#/definitions/Department"}},
                "rooms": {"type": "array", "items": {"$ref": "#/definitions/Room"}},
                "academic": {"$ref": "#/definitions/AcademicConfig"},
                "assignments": {"type": "array", "items": {"$ref": "#/definitions/Assignment"}},
                "parameters": {"$ref": "#/definitions/ParameterOverrides"}
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
