package resolver

// FunctionRange is one named address interval in the output. End > Start.
type FunctionRange struct {
	Start uint64 `json:"start" header:"START" jsonschema:"description=First address of the range"`
	End   uint64 `json:"end" header:"END" jsonschema:"description=Address one past the end of the range"`
	Name  string `json:"name" header:"NAME" jsonschema:"description=Resolved and demangled function name"`
}

// Identity carries the externally supplied image identity.
type Identity struct {
	Image string
	UUID  string
	Arch  string
}

// ResultRecord is the single artifact of a run.
type ResultRecord struct {
	Image     string          `json:"image" jsonschema:"description=Image path or identifier"`
	UUID      string          `json:"uuid" jsonschema:"description=Build identifier of the image"`
	Arch      string          `json:"arch" jsonschema:"description=Target architecture"`
	Functions []FunctionRange `json:"functions" jsonschema:"description=Function ranges sorted by start then end"`
}

// Stats counts what happened during emission.
type Stats struct {
	Entries         int
	SubprogramLike  int
	Emitted         int
	MissingName     int
	DirectRanges    int
	IndirectRanges  int
	UnknownRangeRef int
}
