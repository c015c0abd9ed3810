package validators

import (
	"go.mongodb.org/mongo-driver/bson"

	"truerelief/pkg/model"
)

func ContactValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":             "object",
			"required":             []string{"name", "email", "phone", "concern_type", "subject", "message", "status", "created_at", "updated_at"},
			"additionalProperties": true,
			"properties": bson.M{
				"_id":          bson.M{"bsonType": "objectId"},
				"name":         bson.M{"bsonType": "string", "maxLength": 100},
				"email":        bson.M{"bsonType": "string", "maxLength": 254},
				"phone":        bson.M{"bsonType": "string", "maxLength": 20},
				"concern_type": bson.M{"bsonType": "string", "enum": model.Concerns()},
				"subject":      bson.M{"bsonType": "string", "maxLength": 5000},
				"message":      bson.M{"bsonType": "string", "maxLength": 5000},
				"status":       bson.M{"bsonType": "string", "enum": model.ContactStatuses},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}
