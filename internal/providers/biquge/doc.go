// Package biquge implements providers.Catalog for biquge-style novel sites:
// a POSTed search form answering with a result table, and book pages that
// list their chapters under div#list.
package biquge
