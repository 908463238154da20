// Package databind implements the data-binding runtime: a
// type-erased reflection layer over registered host structures, a
// compiler and abstract machine for the data expression language used
// in markup attributes, and the dependency-driven update engine that
// re-renders only the views whose declared root names were dirtied.
//
// A host registers its types once with a TypeRegistry, binds named
// roots into a Model, and marks root names dirty as its data changes.
// Views bind expressions to elements of a document.Document; each
// frame, Model.Update recomputes exactly the affected views.
package databind
