package api

// NewDBRequest provisions a hosted db connected to an AWS account.
type NewDBRequest struct {
	DBAlias            string `json:"dbAlias"`
	AWSRegion          string `json:"awsRegion"`
	AWSAccessKeyID     string `json:"awsAccessKeyId"`
	AWSSecretAccessKey string `json:"awsSecretAccessKey"`
}

// ImportRequest provisions a hosted db and restores dump into it.
type ImportRequest struct {
	NewDBRequest
	Dump string `json:"dump"`
}

// DB holds the connection details of a newly provisioned hosted db.
type DB struct {
	ID       string `json:"id"`
	Alias    string `json:"alias"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// PlanMeta lists the records of one table affected by a plan.
type PlanMeta struct {
	Columns []string   `json:"columns"`
	Records [][]string `json:"records"`
}

// Plan is the difference between a hosted db and its cloud account, keyed by
// table name.
type Plan struct {
	Version   int                 `json:"iasqlPlanVersion"`
	ToCreate  map[string]PlanMeta `json:"toCreate"`
	ToUpdate  map[string]PlanMeta `json:"toUpdate"`
	ToReplace map[string]PlanMeta `json:"toReplace"`
	ToDelete  map[string]PlanMeta `json:"toDelete"`
}

// Empty reports whether the plan changes nothing.
func (p *Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToReplace) == 0 && len(p.ToDelete) == 0
}

// Module is an IaSQL module that can be installed in a hosted db.
type Module struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Dependencies []string `json:"dependencies"`
}
