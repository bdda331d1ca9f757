// Package schemadoc provides:
//
// - Instantiate: a conformant default instance synthesized from a schema
// - Validate: structured Issues for every violation of a schema in one pass
// - Document: one schema bound to one managed instance, mutated through
// path-addressed, all-or-nothing transactions
//
// Design policy:
// - Keep only public APIs in the root package; the instance model lives in
// value/, path access in dotpath/, the parsed schema in jsonschema/.
// - Data problems are values (Issues); API misuse panics with
// *MalformedArgumentError.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s, err := jsonschema.ParseJSON(data)
//	doc, err := schemadoc.New(s, nil)
//	if err := doc.Set("owner.name", value.String("x")); err != nil {
//		iss, _ := schemadoc.AsIssues(err)
//		// doc.Get("") is unchanged
//	}
package schemadoc
