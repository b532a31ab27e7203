package facts

// CrateFacts aggregates every provider's result for one canonical CrateSpec.
// The metrics flattener reads only from this struct.
type CrateFacts struct {
	Spec         CrateSpec
	CratesData   ProviderResult[CratesData]
	HostingData  ProviderResult[HostingData]
	AdvisoryData ProviderResult[AdvisoryData]
	CodebaseData ProviderResult[CodebaseData]
	CoverageData ProviderResult[CoverageData]
	DocsData     ProviderResult[DocsData]
}
