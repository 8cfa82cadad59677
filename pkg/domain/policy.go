package domain

// Policy is a welfare policy record as stored by the policy store.
type Policy struct {
	PolicyID          string `json:"policy_id" yaml:"policy_id"`
	Title             string `json:"title" yaml:"title"`
	Summary           string `json:"summary,omitempty" yaml:"summary"`
	Ministry          string `json:"ministry,omitempty" yaml:"ministry"`
	SourceType        string `json:"source_type,omitempty" yaml:"source_type"`
	CtpvNm            string `json:"ctpv_nm,omitempty" yaml:"ctpv_nm"`
	SggNm             string `json:"sgg_nm,omitempty" yaml:"sgg_nm"`
	SupportContent    string `json:"support_content,omitempty" yaml:"support_content"`
	TargetDetail      string `json:"target_detail,omitempty" yaml:"target_detail"`
	ApplicationMethod string `json:"application_method,omitempty" yaml:"application_method"`
	Phone             string `json:"phone,omitempty" yaml:"phone"`
	Website           string `json:"website,omitempty" yaml:"website"`
}

// PolicySource is a policy returned by a search, with its relevance score.
type PolicySource struct {
	Policy
	Score        float64 `json:"score"`
	ChunkType    string  `json:"chunk_type,omitempty"`
	ChunkContent string  `json:"chunk_content,omitempty"`
}

// SearchFilter narrows a policy search.
type SearchFilter struct {
	Region string `json:"region,omitempty"`
}
