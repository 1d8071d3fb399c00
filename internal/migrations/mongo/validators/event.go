package validators

import "go.mongodb.org/mongo-driver/bson"

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"description",
			"date",
			"time",
			"venue",
			"category",
			"location",
			"price",
			"seat_limit",
			"seats_booked",
			"created_by",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 5000,
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"time": bson.M{
				"bsonType": "string",
			},

			"venue": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"category": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"location": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"seat_limit": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"seats_booked": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"image": bson.M{
				"bsonType": "string",
			},

			"created_by": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
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
