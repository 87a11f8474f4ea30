// Package core implements the Schema Language engine: a typed schema model
// (classes, slots, types, enums) with a textual loader, import and
// inheritance resolvers, a validator pipeline with an embedded expression
// language, a structural diff/patch engine, a schema merger, and a lint
// engine, assembled behind a single Service façade.
package core
