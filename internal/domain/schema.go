package domain

// PolicyIgnoreUnknownCategories declares that categorical values unseen at fit
// time are tolerated at inference time.
const PolicyIgnoreUnknownCategories = "ignore"

// SchemaContract is the column contract recorded with every full-mode run.
type SchemaContract struct {
	Target                  string            `json:"target"`
	RequiredFeatureColumns  []string          `json:"required_feature_columns"`
	OptionalIDColumns       []string          `json:"optional_id_columns"`
	FeatureDTypes           map[string]string `json:"feature_dtypes"`
	DatetimeColumns         []string          `json:"datetime_columns"`
	PolicyUnknownCategories string            `json:"policy_unknown_categories"`
	ForbiddenColumns        []string          `json:"forbidden_columns"`
}
