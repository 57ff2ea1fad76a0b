package models

// Image holds the original upload location and the backing-store copy of a picture.
type Image struct {
	URLOriginal string `json:"urlOriginal" bson:"urlOriginal"`
	URL         string `json:"url" bson:"url"`
	MimeType    string `json:"mimetype" bson:"mimetype"`
	Size        int64  `json:"size" bson:"size"`
}
