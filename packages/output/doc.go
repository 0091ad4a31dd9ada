// Package output renders call outcomes to the console.
package output
