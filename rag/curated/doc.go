// Package curated handles the curated medical relation dataset: converting
// an annotated BioC corpus (such as BioRED) into the curated relation file,
// reading and validating that file, and merging it into a knowledge graph.
//
// The file maps an entity to relation buckets, each a list of related
// entities:
//
//	{
//	  "fever": {"treatments": ["aspirin", "paracetamol"]},
//	  "lung cancer": {"causes": ["smoking"]}
//	}
//
// "X causes Y" is filed under Y's causes bucket, pointing at X.
package curated
