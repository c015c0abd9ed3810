package validators

import (
	"go.mongodb.org/mongo-driver/bson"

	"truerelief/pkg/model"
)

func AppointmentValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{
				"service",
				"name",
				"email",
				"phone",
				"age",
				"location",
				"date",
				"time",
				"status",
				"created_at",
				"updated_at",
			},
			"additionalProperties": true,

			"properties": bson.M{
				"_id": bson.M{
					"bsonType": "objectId",
				},

				"service": bson.M{
					"bsonType": "string",
					"enum":     model.Services(),
				},

				"name": bson.M{
					"bsonType":  "string",
					"minLength": 1,
					"maxLength": 100,
				},

				"email": bson.M{
					"bsonType":  "string",
					"maxLength": 254,
				},

				"phone": bson.M{
					"bsonType":  "string",
					"maxLength": 20,
				},

				"age": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  1,
					"maximum":  120,
				},

				"location": bson.M{
					"bsonType":  "string",
					"maxLength": 255,
				},

				"date": bson.M{
					"bsonType": "string",
					"pattern":  `^\d{4}-\d{2}-\d{2}$`,
				},

				"time": bson.M{
					"bsonType": "string",
				},

				"message": bson.M{
					"bsonType":  "string",
					"maxLength": 5000,
				},

				"status": bson.M{
					"bsonType": "string",
					"enum":     model.AppointmentStatuses,
				},

				"created_at": bson.M{
					"bsonType": "date",
				},

				"updated_at": bson.M{
					"bsonType": "date",
				},
			},
		},
	}
}
