package littlefield

// MetricCategory describes one Plot dataset: the data= parameter its page is
// fetched with and how many points payloads the page carries.
type MetricCategory struct {
	Dataset string
	Series  int
}

// MultiSeriesCount is how many decision-indexed series the JOBT, JOBREV and
// JOBOUT pages are expected to carry; pages with fewer get zero-padded.
const MultiSeriesCount = 3

// Catalog lists every dataset in the order its series occupy the output
// columns. The order is load-bearing: the merger assigns columns by append
// position, not by name.
var Catalog = []MetricCategory{
	{Dataset: "INV", Series: 1},
	{Dataset: "CASH", Series: 1},
	{Dataset: "JOBIN", Series: 1},
	{Dataset: "JOBQ", Series: 1},
	{Dataset: "S1Q", Series: 1},
	{Dataset: "S2Q", Series: 1},
	{Dataset: "S3Q", Series: 1},
	{Dataset: "S1UTIL", Series: 1},
	{Dataset: "S2UTIL", Series: 1},
	{Dataset: "S3UTIL", Series: 1},
	{Dataset: "JOBT", Series: MultiSeriesCount},
	{Dataset: "JOBREV", Series: MultiSeriesCount},
	{Dataset: "JOBOUT", Series: MultiSeriesCount},
}
