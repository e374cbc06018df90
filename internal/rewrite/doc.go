// Package rewrite injects fragment markup into single-file component pages.
//
// A page is parsed into its blocks, its template is cleaned and prefixed with
// the fragments assigned to the page, and the document is reassembled in a
// fixed order:
//
//	<template>
//	page-meta element
//	fragments and cleaned template body
//	</template>
//	special-dialect module scripts (verbatim)
//	<script setup>, <script>, <style> blocks
//
// Any failure leaves the document unchanged and is reported in Result.Errors.
package rewrite
