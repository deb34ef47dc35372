// Package importers turns external catalog files into services.BookInput
// values. Validation and persistence happen in services.ImportService so an
// imported row obeys the same rules as a form submission:
//
//	Source file → Parse → []services.BookInput → ImportService → books table
//
// CSV is the only supported format; its header must name at least the
// title and author columns.
package importers
