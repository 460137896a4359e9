// Package analytics computes the descriptive KPIs over the cleaned
// dataset: monthly average ticket, product rankings, payment method
// shares, field correlations and ABC (Pareto) segmentation of products
// and clients by cumulative contribution share.
//
// Everything operates on the integrated fact table built by Integrate,
// one EnrichedLine per sale line.
package analytics
